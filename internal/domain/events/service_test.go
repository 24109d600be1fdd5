package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/server/internal/blob"
	"github.com/eventdesk/server/internal/domain/directory"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	svc     *Service
	repo    *fakeRepo
	blobs   *blob.MemoryStore
	author  directory.Account
	address directory.Address
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	blobs := blob.NewMemoryStore()
	env := &testEnv{
		repo:    repo,
		blobs:   blobs,
		author:  repo.addAccount("Author"),
		address: repo.addAddress("Berlin"),
		now:     time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(repo, blobs, zerolog.Nop(), WithClock(func() time.Time { return env.now }))
	return env
}

func strPtr(s string) *string { return &s }

func (env *testEnv) createEvent(t *testing.T, in EventInput) *Event {
	t.Helper()
	if in.Title == "" {
		in.Title = "Summer fair"
	}
	if in.Address == 0 {
		in.Address = env.address.ID
	}
	if in.BeginDate == "" {
		in.BeginDate = "2024-06-01"
	}
	res, err := env.svc.Create(context.Background(), env.author.ID, in)
	require.NoError(t, err)
	return res.Event
}

func TestCreate_ValidationFirstViolationWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.author.ID, EventInput{})
	var missing MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{Title: "x", Address: env.address.ID})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "begin_date", missing.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{Title: "   ", Address: env.address.ID})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{Title: "x", Address: env.address.ID, BeginDate: "June 1st"})
	var invalid InvalidDataError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "begin_date", invalid.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{
		Title: "x", Address: env.address.ID, BeginDate: "2024-06-10", ActiveUntil: strPtr("2024-06-01"),
	})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "active_until", invalid.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{
		Title: "x", Address: env.address.ID, BeginDate: "2024-06-10", BeginTime: strPtr("25:99"),
	})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "begin_time", invalid.Field)

	_, err = env.svc.Create(ctx, env.author.ID, EventInput{Title: "x", Address: 9999, BeginDate: "2024-06-10"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "address", invalid.Field)
}

func TestCreate_WritesNoEditor(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, EventInput{BeginTime: strPtr("18:30")})

	editors, err := env.svc.Editors(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, editors)
	assert.Equal(t, env.author.ID, event.Author.ID)
	require.NotNil(t, event.BeginTime)
	assert.Equal(t, "18:30:00", *event.BeginTime)
	assert.Equal(t, 1, env.repo.commits)
}

func TestCreate_ReportsInvalidTagsAndCustomers(t *testing.T) {
	env := newTestEnv(t)
	env.repo.state.vocab["music"] = true
	allowed := env.repo.addCustomer("allowed", true)
	denied := env.repo.addCustomer("denied", false)

	res, err := env.svc.Create(context.Background(), env.author.ID, EventInput{
		Title: "Gig", Address: env.address.ID, BeginDate: "2024-06-01",
		Tags:      []string{"music", "bogus"},
		Customers: []int64{allowed.ID, denied.ID, 424242},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bogus"}, res.InvalidTags)
	assert.Equal(t, []int64{denied.ID, 424242}, res.InvalidCustomers)

	links, err := env.svc.Customers(context.Background(), res.Event.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, allowed.ID, links[0].Customer.ID)
}

func TestPatch_AppendsEditorAndLeavesUnsetFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, EventInput{Subtitle: strPtr("sub"), End: strPtr("2024-06-03")})
	editor := env.repo.addAccount("Editor")

	var patch EventPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Renamed","subtitle":null}`), &patch))

	_, err := env.svc.Patch(ctx, event.ID, editor.ID, patch)
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Nil(t, got.Subtitle)
	require.NotNil(t, got.End)
	assert.Equal(t, "2024-06-03", got.End.Format(DateLayout))

	editors, err := env.svc.Editors(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, editor.ID, editors[0].Account.ID)
	assert.Equal(t, env.now, editors[0].Timestamp)
}

func TestPatch_RequiredFieldCannotBeNulled(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, EventInput{})

	var patch EventPatch
	require.NoError(t, json.Unmarshal([]byte(`{"begin_date":null}`), &patch))

	_, err := env.svc.Patch(context.Background(), event.ID, env.author.ID, patch)
	var missing MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "begin_date", missing.Field)
	assert.Equal(t, 1, env.repo.rollbacks)

	editors, err := env.svc.Editors(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, editors)
}

func TestPatch_UnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Patch(context.Background(), 404, env.author.ID, EventPatch{})
	require.ErrorIs(t, err, ErrNoSuchEvent)
}

func TestDelete_ReleasesImagesAndChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.state.vocab["music"] = true
	customer := env.repo.addCustomer("c", true)
	event := env.createEvent(t, EventInput{Tags: []string{"music"}, Customers: []int64{customer.ID}})

	img1, err := env.svc.AddImage(ctx, event.ID, env.author.ID, pngHeader, ImageMetadata{Source: strPtr("Photographer")})
	require.NoError(t, err)
	img2, err := env.svc.AddImage(ctx, event.ID, env.author.ID, []byte("plain text"), ImageMetadata{Source: strPtr("Archive")})
	require.NoError(t, err)
	_, err = env.svc.AddSubEvent(ctx, event.ID, SubEventInput{Timestamp: env.now})
	require.NoError(t, err)
	_, err = env.svc.AddPrice(ctx, event.ID, PriceInput{Value: decPtr("10.00")})
	require.NoError(t, err)
	_, err = env.svc.Patch(ctx, event.ID, env.author.ID, EventPatch{})
	require.NoError(t, err)
	require.Equal(t, 2, env.blobs.Len())

	require.NoError(t, env.svc.Delete(ctx, event.ID))

	assert.False(t, env.blobs.Has(img1.BlobKey))
	assert.False(t, env.blobs.Has(img2.BlobKey))
	assert.Empty(t, env.repo.state.images)
	assert.Empty(t, env.repo.state.editors)
	assert.Empty(t, env.repo.state.tags)
	assert.Empty(t, env.repo.state.subEvents)
	assert.Empty(t, env.repo.state.prices)
	assert.Empty(t, env.repo.state.links)

	_, err = env.svc.Get(ctx, event.ID)
	require.ErrorIs(t, err, ErrNoSuchEvent)
	require.ErrorIs(t, env.svc.Delete(ctx, event.ID), ErrNoSuchEvent)
}

type failingDeleteStore struct {
	*blob.MemoryStore
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("storage offline")
}

func TestDelete_BlobFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t, EventInput{})
	_, err := env.svc.AddImage(ctx, event.ID, env.author.ID, pngHeader, ImageMetadata{Source: strPtr("x")})
	require.NoError(t, err)

	svc := NewService(env.repo, failingDeleteStore{env.blobs}, zerolog.Nop())
	require.Error(t, svc.Delete(ctx, event.ID))

	_, err = env.svc.Get(ctx, event.ID)
	require.NoError(t, err)
	images, err := env.svc.Images(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestList_And_Details(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.state.vocab["music"] = true
	first := env.createEvent(t, EventInput{Title: "first", Tags: []string{"music"}})
	env.createEvent(t, EventInput{Title: "second"})

	list, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)

	details, err := env.svc.Details(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, details.Tags, 1)
	assert.Equal(t, "music", details.Tags[0].Tag)

	all, err := env.svc.ListDetails(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
