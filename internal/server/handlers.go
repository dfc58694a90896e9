package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/timelines/internal/timeline"
)

func registerRoutes(r chi.Router, store *timeline.Store) {
	r.Route("/timelines", func(tr chi.Router) {
		tr.Get("/", listTimelinesHandler(store))
		tr.Post("/", createTimelineHandler(store))

		tr.Get("/{timelineID}", getTimelineHandler(store))
		tr.Patch("/{timelineID}", updateTimelineHandler(store))
		tr.Delete("/{timelineID}", deleteTimelineHandler(store))

		tr.Post("/{timelineID}/events", addEventHandler(store))
		tr.Patch("/{timelineID}/events/{eventID}", updateEventHandler(store))
		tr.Delete("/{timelineID}/events/{eventID}", deleteEventHandler(store))

		tr.Post("/{timelineID}/events/{eventID}/media", addMediaHandler(store))
		tr.Delete("/{timelineID}/events/{eventID}/media/{index}", removeMediaHandler(store))
	})
}

type timelineSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PictureURL  string `json:"pictureUrl"`
	EventCount  int    `json:"eventCount"`
}

// timelineView is a timeline plus the derived data needed to render it.
type timelineView struct {
	timeline.Timeline
	People        []string         `json:"people"`
	Tags          []string         `json:"tags"`
	PersonFilter  string           `json:"personFilter,omitempty"`
	TagFilter     string           `json:"tagFilter,omitempty"`
	VisibleEvents []timeline.Event `json:"visibleEvents"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type addMediaRequest struct {
	Media []string `json:"media"`
}

func listTimelinesHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := store.Timelines()
		out := make([]timelineSummary, 0, len(all))
		for _, t := range all {
			out = append(out, timelineSummary{
				ID:          t.ID,
				Name:        t.Name,
				Description: t.Description,
				PictureURL:  t.PictureURL,
				EventCount:  len(t.Events),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createTimelineHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch timeline.TimelinePatch
		if r.ContentLength != 0 {
			if err := decodeStrict(r, &patch); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		id := store.CreateTimeline(r.Context())
		if !patch.IsEmpty() {
			store.UpdateTimeline(r.Context(), id, patch)
		}

		t, _ := store.Timeline(id)
		writeJSON(w, http.StatusCreated, t)
	}
}

func getTimelineHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := store.Timeline(chi.URLParam(r, "timelineID"))
		if !ok {
			http.Error(w, "timeline not found", http.StatusNotFound)
			return
		}

		person := r.URL.Query().Get("person")
		tag := r.URL.Query().Get("tag")
		writeJSON(w, http.StatusOK, timelineView{
			Timeline:      t,
			People:        timeline.DistinctPeople(t.Events),
			Tags:          timeline.DistinctTags(t.Events),
			PersonFilter:  person,
			TagFilter:     tag,
			VisibleEvents: timeline.VisibleEvents(t.Events, person, tag),
		})
	}
}

// Mutations on unknown ids are no-ops and answer 204, like deletes.

func updateTimelineHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "timelineID")

		var patch timeline.TimelinePatch
		if err := decodeStrict(r, &patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		store.UpdateTimeline(r.Context(), id, patch)
		respondTimeline(w, store, id)
	}
}

func deleteTimelineHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.DeleteTimeline(r.Context(), chi.URLParam(r, "timelineID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func addEventHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "timelineID")

		var patch timeline.EventPatch
		if r.ContentLength != 0 {
			if err := decodeStrict(r, &patch); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		if patch.Date != nil {
			if err := timeline.ValidateDate(*patch.Date); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		eventID := store.AddEvent(r.Context(), id)
		if eventID == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !patch.IsEmpty() {
			if err := store.UpdateEvent(r.Context(), id, eventID, patch); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		writeJSON(w, http.StatusCreated, createdResponse{ID: eventID})
	}
}

func updateEventHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "timelineID")
		eventID := chi.URLParam(r, "eventID")

		var patch timeline.EventPatch
		if err := decodeStrict(r, &patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := store.UpdateEvent(r.Context(), id, eventID, patch); err != nil {
			if errors.Is(err, timeline.ErrInvalidDate) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondTimeline(w, store, id)
	}
}

func deleteEventHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.DeleteEvent(r.Context(), chi.URLParam(r, "timelineID"), chi.URLParam(r, "eventID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func addMediaHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "timelineID")

		var req addMediaRequest
		if err := decodeStrict(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		store.AddMedia(r.Context(), id, chi.URLParam(r, "eventID"), req.Media...)
		respondTimeline(w, store, id)
	}
}

func removeMediaHandler(store *timeline.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}

		store.RemoveMedia(r.Context(), chi.URLParam(r, "timelineID"), chi.URLParam(r, "eventID"), index)
		w.WriteHeader(http.StatusNoContent)
	}
}

// respondTimeline writes the timeline after a mutation, or 204 when it does
// not exist.
func respondTimeline(w http.ResponseWriter, store *timeline.Store, id string) {
	t, ok := store.Timeline(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// decodeStrict decodes a JSON body, rejecting unknown fields so that id and
// events can never be smuggled into a patch.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
