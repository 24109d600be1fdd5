package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/domain/customers"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestStaffAuth(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour, "eventdesk")
	token, err := jwt.Generate(9, auth.RoleEditor)
	require.NoError(t, err)

	var seen Staff
	handler := StaffAuth(jwt, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = StaffFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Staff{AccountID: 9, Role: auth.RoleEditor}, seen)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireWrite(t *testing.T) {
	handler := RequireWrite("test")(okHandler())

	cases := []struct {
		name   string
		ctx    func(context.Context) context.Context
		status int
	}{
		{"no staff", func(ctx context.Context) context.Context { return ctx }, http.StatusUnauthorized},
		{"viewer", func(ctx context.Context) context.Context {
			return ContextWithStaff(ctx, Staff{AccountID: 1, Role: auth.RoleViewer})
		}, http.StatusForbidden},
		{"editor", func(ctx context.Context) context.Context {
			return ContextWithStaff(ctx, Staff{AccountID: 1, Role: auth.RoleEditor})
		}, http.StatusOK},
		{"admin", func(ctx context.Context) context.Context {
			return ContextWithStaff(ctx, Staff{AccountID: 1, Role: auth.RoleAdmin})
		}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
			req = req.WithContext(tc.ctx(req.Context()))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

type stubResolver struct {
	tokens map[string]customers.Customer
}

func (s stubResolver) ResolveCustomer(_ context.Context, token string) (*customers.Customer, error) {
	if token == "" {
		return nil, customers.ErrMissingAccessToken
	}
	c, ok := s.tokens[token]
	if !ok {
		return nil, customers.ErrInvalidAccessToken
	}
	return &c, nil
}

func TestPublicAccess(t *testing.T) {
	resolver := stubResolver{tokens: map[string]customers.Customer{"tok": {ID: 3, Name: "ACME"}}}
	var seen customers.Customer
	handler := PublicAccess(resolver, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CustomerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pub/events?access_token=tok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), seen.ID)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pub/events", nil)
	req.Header.Set("Authorization", "Bearer tok")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pub/events", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing access token")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pub/events?access_token=nope", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid access token")
}
