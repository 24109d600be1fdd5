package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/events"
)

func jsonInt(id int64) string { return strconv.FormatInt(id, 10) }

func customersFixture(id int64, name string) customers.Customer {
	return customers.Customer{ID: id, Name: name}
}

func strPtr(s string) *string { return &s }

type publicEnv struct {
	*handlerEnv
	public   *PublicHandler
	customer customers.Customer
}

func newPublicEnv(t *testing.T) *publicEnv {
	t.Helper()
	env := &publicEnv{handlerEnv: newHandlerEnv(t)}
	env.customer = customersFixture(env.repo.id(), "Cinema")
	env.repo.customers[env.customer.ID] = env.customer
	env.repo.allowed[env.customer.ID] = true
	env.public = NewPublicHandler(env.svc, "test")
	env.public.Now = func() time.Time { return env.now }
	return env
}

func (env *publicEnv) publicRequest(target string, pathValues ...string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req.WithContext(middleware.ContextWithCustomer(req.Context(), env.customer))
}

func (env *publicEnv) linkedEvent(t *testing.T, in events.EventInput) *events.Event {
	t.Helper()
	in.Title = "Open air"
	in.Address = env.address.ID
	in.Customers = []int64{env.customer.ID}
	res, err := env.svc.Create(context.Background(), env.author.ID, in)
	require.NoError(t, err)
	require.Empty(t, res.InvalidCustomers)
	return res.Event
}

func TestPublicList_OnlyActiveLinkedEvents(t *testing.T) {
	env := newPublicEnv(t)
	active := env.linkedEvent(t, events.EventInput{BeginDate: "2024-06-01", End: strPtr("2024-06-30")})
	env.linkedEvent(t, events.EventInput{BeginDate: "2024-05-01", End: strPtr("2024-05-31")})
	env.createEvent(t)

	rec := httptest.NewRecorder()
	env.public.List(rec, env.publicRequest("/api/v1/pub/events"))
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.EqualValues(t, active.ID, list[0]["id"])
	assert.NotContains(t, list[0], "customers")
	assert.NotContains(t, list[0], "editors")
}

func TestPublicGet_HidesOtherCustomersAndEditors(t *testing.T) {
	env := newPublicEnv(t)
	rival := customersFixture(env.repo.id(), "Rival Cinema")
	env.repo.customers[rival.ID] = rival
	env.repo.allowed[rival.ID] = true
	ctx := context.Background()

	res, err := env.svc.Create(ctx, env.author.ID, events.EventInput{
		Title:     "Shared premiere",
		Address:   env.address.ID,
		BeginDate: "2024-06-01",
		Customers: []int64{env.customer.ID, rival.ID},
	})
	require.NoError(t, err)
	require.Empty(t, res.InvalidCustomers)
	_, err = env.svc.Patch(ctx, res.Event.ID, env.author.ID, events.EventPatch{Subtitle: events.Some("Premiere night")})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.public.Get(rec, env.publicRequest("/", "id", jsonInt(res.Event.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Rival Cinema")

	doc := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Shared premiere", doc["title"])
	assert.Equal(t, "Premiere night", doc["subtitle"])
	assert.NotContains(t, doc, "customers")
	assert.NotContains(t, doc, "editors")

	rec = httptest.NewRecorder()
	env.public.List(rec, env.publicRequest("/api/v1/pub/events"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Rival Cinema")
	assert.NotContains(t, rec.Body.String(), `"editors"`)
}

func TestPublicGet_UniformNotFound(t *testing.T) {
	env := newPublicEnv(t)
	expired := env.linkedEvent(t, events.EventInput{BeginDate: "2024-05-01", ActiveUntil: strPtr("2024-05-02")})
	unlinked := env.createEvent(t)
	visible := env.linkedEvent(t, events.EventInput{BeginDate: "2024-06-01"})

	for _, id := range []int64{expired.ID, unlinked.ID, 9999} {
		rec := httptest.NewRecorder()
		env.public.Get(rec, env.publicRequest("/", "id", jsonInt(id)))
		assert.Equal(t, http.StatusNotFound, rec.Code, "event %d", id)
	}

	rec := httptest.NewRecorder()
	env.public.Get(rec, env.publicRequest("/", "id", jsonInt(visible.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Open air", decodeBody[eventView](t, rec).Title)
}

func TestPublicImage_HiddenEventMasksImage(t *testing.T) {
	env := newPublicEnv(t)
	visible := env.linkedEvent(t, events.EventInput{BeginDate: "2024-06-01"})
	hidden := env.createEvent(t)
	ctx := context.Background()

	shown, err := env.svc.AddImage(ctx, visible.ID, env.author.ID, pngHeader, events.ImageMetadata{Source: strPtr("Press")})
	require.NoError(t, err)
	masked, err := env.svc.AddImage(ctx, hidden.ID, env.author.ID, pngHeader, events.ImageMetadata{Source: strPtr("Press")})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.public.Image(rec, env.publicRequest("/", "id", jsonInt(shown.ID)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	env.public.Image(rec, env.publicRequest("/", "id", jsonInt(masked.ID)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublic_NoCustomerOnContext(t *testing.T) {
	env := newPublicEnv(t)

	rec := httptest.NewRecorder()
	env.public.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pub/events", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
