package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/timelines/internal/metrics"
	"github.com/runnerr0/timelines/internal/timeline"
)

type testEnv struct {
	store     *timeline.Store
	persister *timeline.MemoryPersister
	metrics   *metrics.Metrics
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	n := 0
	ids := func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	p := timeline.NewMemoryPersister()
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := timeline.NewStore(p,
		timeline.WithIDGenerator(ids),
		timeline.WithClock(func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }),
		timeline.WithRecorder(m),
		timeline.WithLogger(logger),
	)
	store.Initialize(context.Background())

	return &testEnv{
		store:     store,
		persister: p,
		metrics:   m,
		handler:   NewRouter(Options{Store: store, Metrics: m, Logger: logger}),
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateAndListTimelines(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/timelines", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created timeline.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "proj-1", created.ID)
	assert.Equal(t, timeline.DefaultTimelineName, created.Name)
	assert.Equal(t, timeline.PlaceholderImage, created.PictureURL)

	rec = env.do(t, http.MethodPost, "/timelines", `{"name":"Family"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/timelines", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []timelineSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "proj-1", list[0].ID)
	assert.Equal(t, "Family", list[1].Name)
	assert.Equal(t, 0, list[1].EventCount)
}

func TestListTimelinesEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/timelines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetTimelineNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/timelines/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTimelineWithFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.store.CreateTimeline(ctx)
	e1 := env.store.AddEvent(ctx, id)
	e2 := env.store.AddEvent(ctx, id)
	require.NoError(t, env.store.UpdateEvent(ctx, id, e1, timeline.EventPatch{
		Date:   timeline.String("2024-03-01"),
		People: timeline.Strings("Alice", "Bob"),
		Tags:   timeline.Strings("trip"),
	}))
	require.NoError(t, env.store.UpdateEvent(ctx, id, e2, timeline.EventPatch{
		Date:   timeline.String("2024-01-01"),
		People: timeline.Strings("Bob"),
	}))

	rec := env.do(t, http.MethodGet, "/timelines/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view timelineView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []string{"Alice", "Bob"}, view.People)
	assert.Equal(t, []string{"trip"}, view.Tags)
	require.Len(t, view.VisibleEvents, 2)
	assert.Equal(t, e2, view.VisibleEvents[0].ID)
	assert.Equal(t, e1, view.VisibleEvents[1].ID)
	// Stored order is untouched.
	assert.Equal(t, e1, view.Events[0].ID)

	rec = env.do(t, http.MethodGet, "/timelines/"+id+"?person=Alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = timelineView{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.VisibleEvents, 1)
	assert.Equal(t, e1, view.VisibleEvents[0].ID)
	assert.Equal(t, "Alice", view.PersonFilter)

	rec = env.do(t, http.MethodGet, "/timelines/"+id+"?person=Bob&tag=trip", "")
	view = timelineView{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.VisibleEvents, 1)
	assert.Equal(t, e1, view.VisibleEvents[0].ID)
}

func TestUpdateTimeline(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPatch, "/timelines/"+id, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got, ok := env.store.Timeline(id)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, timeline.DefaultTimelineDescription, got.Description)
}

func TestUpdateTimelineRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPatch, "/timelines/"+id, `{"id":"other"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, ok := env.store.Timeline(id)
	assert.True(t, ok)
}

func TestMutationsOnAbsentIDsAreNoOps(t *testing.T) {
	env := newTestEnv(t)
	saves := env.persister.Saves()

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPatch, "/timelines/nope", `{"name":"x"}`},
		{http.MethodDelete, "/timelines/nope", ""},
		{http.MethodPost, "/timelines/nope/events", ""},
		{http.MethodPatch, "/timelines/nope/events/ev-1", `{"name":"x"}`},
		{http.MethodDelete, "/timelines/nope/events/ev-1", ""},
		{http.MethodDelete, "/timelines/nope/events/ev-1/media/0", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusNoContent, rec.Code)
		})
	}

	assert.Equal(t, saves, env.persister.Saves())
	assert.Empty(t, env.store.Timelines())
}

func TestDeleteTimeline(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodDelete, "/timelines/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.store.Timelines())
}

func TestAddEvent(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPost, "/timelines/"+id+"/events", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createdResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "ev-2", created.ID)

	got, _ := env.store.Timeline(id)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "2024-06-15", got.Events[0].Date)
	assert.Equal(t, timeline.DefaultEventName, got.Events[0].Name)
}

func TestAddEventWithFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPost, "/timelines/"+id+"/events",
		`{"name":"Wedding","date":"2020-05-01","people":["Alice"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	got, _ := env.store.Timeline(id)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Wedding", got.Events[0].Name)
	assert.Equal(t, "2020-05-01", got.Events[0].Date)
	assert.Equal(t, []string{"Alice"}, got.Events[0].People)
}

func TestAddEventInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPost, "/timelines/"+id+"/events", `{"date":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, _ := env.store.Timeline(id)
	assert.Empty(t, got.Events)
}

func TestUpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.store.CreateTimeline(ctx)
	eid := env.store.AddEvent(ctx, id)

	rec := env.do(t, http.MethodPatch, "/timelines/"+id+"/events/"+eid,
		`{"description":"Met at the park","tags":["outdoors","summer"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got timeline.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Met at the park", got.Events[0].Description)
	assert.Equal(t, []string{"outdoors", "summer"}, got.Events[0].Tags)
	assert.Equal(t, timeline.DefaultEventName, got.Events[0].Name)
}

func TestUpdateEventInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.store.CreateTimeline(ctx)
	eid := env.store.AddEvent(ctx, id)

	rec := env.do(t, http.MethodPatch, "/timelines/"+id+"/events/"+eid, `{"date":"2024-13-40"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, _ := env.store.Timeline(id)
	assert.Equal(t, "2024-06-15", got.Events[0].Date)
}

func TestDeleteEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.store.CreateTimeline(ctx)
	eid := env.store.AddEvent(ctx, id)

	rec := env.do(t, http.MethodDelete, "/timelines/"+id+"/events/"+eid, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, _ := env.store.Timeline(id)
	assert.Empty(t, got.Events)
}

func TestMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.store.CreateTimeline(ctx)
	eid := env.store.AddEvent(ctx, id)

	rec := env.do(t, http.MethodPost, "/timelines/"+id+"/events/"+eid+"/media",
		`{"media":["data:a","data:b","data:c"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/timelines/"+id+"/events/"+eid+"/media/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, _ := env.store.Timeline(id)
	assert.Equal(t, []string{"data:a", "data:c"}, got.Events[0].Media)

	rec = env.do(t, http.MethodDelete, "/timelines/"+id+"/events/"+eid+"/media/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	id := env.store.CreateTimeline(context.Background())

	rec := env.do(t, http.MethodPatch, "/timelines/"+id, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestsAreCounted(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/timelines", "")
	env.do(t, http.MethodGet, "/timelines/missing", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `timelines_http_requests_total{code="404",route="/timelines/{timelineID}"} 1`)
}
