package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventdesk/server/internal/api/problem"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/domain/customers"
)

// Staff is the authenticated account behind a management request.
type Staff struct {
	AccountID int64
	Role      auth.Role
}

const (
	staffKey    contextKey = "staff"
	customerKey contextKey = "customer"
)

func ContextWithStaff(ctx context.Context, staff Staff) context.Context {
	return context.WithValue(ctx, staffKey, staff)
}

func StaffFromContext(ctx context.Context) (Staff, bool) {
	staff, ok := ctx.Value(staffKey).(Staff)
	return staff, ok
}

// StaffAuth requires a valid bearer JWT and stores the Staff it names.
func StaffAuth(jwt *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventdesk"`)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env)
				return
			}
			claims, err := jwt.Validate(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventdesk", error="invalid_token"`)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env)
				return
			}
			accountID, err := claims.AccountID()
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env)
				return
			}

			staff := Staff{AccountID: accountID, Role: auth.NormalizeRole(claims.Role)}
			ctx := ContextWithStaff(r.Context(), staff)
			logger := LoggerFromContext(ctx).With().Int64("account_id", accountID).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

var errReadOnlyRole = errors.New("role may not modify events")

// RequireWrite lets only admins and editors through. It must run inside
// StaffAuth.
func RequireWrite(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staff, ok := StaffFromContext(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrMissingToken, env)
				return
			}
			if !auth.CanWrite(string(staff.Role)) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", errReadOnlyRole, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CustomerResolver maps a public access token to its customer.
type CustomerResolver interface {
	ResolveCustomer(ctx context.Context, token string) (*customers.Customer, error)
}

func ContextWithCustomer(ctx context.Context, customer customers.Customer) context.Context {
	return context.WithValue(ctx, customerKey, customer)
}

func CustomerFromContext(ctx context.Context) (customers.Customer, bool) {
	customer, ok := ctx.Value(customerKey).(customers.Customer)
	return customer, ok
}

// PublicAccess resolves the access token of a public request. A missing or
// unknown token is answered with 422.
func PublicAccess(resolver CustomerResolver, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customer, err := resolver.ResolveCustomer(r.Context(), customers.TokenFromRequest(r))
			switch {
			case errors.Is(err, customers.ErrMissingAccessToken):
				problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeAccessToken, "Missing access token", err, env,
					problem.WithDetail(err.Error()))
				return
			case errors.Is(err, customers.ErrInvalidAccessToken):
				problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeAccessToken, "Invalid access token", err, env,
					problem.WithDetail(err.Error()))
				return
			case err != nil:
				problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternalError, "Internal error", err, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCustomer(r.Context(), *customer)))
		})
	}
}
