package timeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Recorder receives persistence outcomes and collection size changes.
type Recorder interface {
	LoadFailed()
	SaveSucceeded()
	SaveFailed()
	CollectionSize(timelines, events int)
}

type nopRecorder struct{}

func (nopRecorder) LoadFailed()             {}
func (nopRecorder) SaveSucceeded()          {}
func (nopRecorder) SaveFailed()             {}
func (nopRecorder) CollectionSize(int, int) {}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the clock used to date new events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator used for new timeline and event ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.newID = g }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.rec = r }
}

// Store owns the timeline collection and writes it through to a Persister
// after every mutation. Persistence is best-effort: a failed save is logged
// and the in-memory state stays authoritative.
type Store struct {
	mu        sync.Mutex
	timelines []Timeline

	persister Persister
	log       *slog.Logger
	now       func() time.Time
	newID     IDGenerator
	rec       Recorder
}

// NewStore creates an empty Store. Call Initialize to load persisted data.
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		timelines: []Timeline{},
		persister: p,
		log:       slog.Default(),
		now:       time.Now,
		newID:     NewID,
		rec:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces the collection with the persisted one. Missing or
// unreadable data leaves the store empty; failures are logged, never
// returned.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timelines = []Timeline{}

	loaded, err := s.persister.Load(ctx)
	if err != nil {
		s.log.Error("reading timelines from storage", "error", err)
		s.rec.LoadFailed()
		s.recordSize()
		return
	}
	if loaded != nil {
		s.timelines = loaded
	}
	s.log.Debug("timelines loaded", "count", len(s.timelines))
	s.recordSize()
}

// Timelines returns a copy of the collection in insertion order.
func (s *Store) Timelines() []Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Timeline, len(s.timelines))
	for i, t := range s.timelines {
		out[i] = t.clone()
	}
	return out
}

// Timeline returns a copy of the timeline with the given id.
func (s *Store) Timeline(id string) (Timeline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id)
	if t == nil {
		return Timeline{}, false
	}
	return t.clone(), true
}

// CreateTimeline appends a placeholder timeline and returns its id.
func (s *Store) CreateTimeline(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Timeline{
		ID:          s.uniqueTimelineID(),
		Name:        DefaultTimelineName,
		Description: DefaultTimelineDescription,
		PictureURL:  PlaceholderImage,
		Events:      []Event{},
	}
	s.timelines = append(s.timelines, t)
	s.persist(ctx)
	return t.ID
}

// DeleteTimeline removes a timeline and all of its events. Unknown ids are
// ignored.
func (s *Store) DeleteTimeline(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.timelines {
		if s.timelines[i].ID == id {
			s.timelines = append(s.timelines[:i], s.timelines[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateTimeline merges patch into the timeline. Unknown ids are ignored.
func (s *Store) UpdateTimeline(ctx context.Context, id string, patch TimelinePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id)
	if t == nil {
		return
	}
	patch.apply(t)
	s.persist(ctx)
}

// AddEvent appends a placeholder event dated today and returns its id, or
// "" if the timeline does not exist.
func (s *Store) AddEvent(ctx context.Context, timelineID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(timelineID)
	if t == nil {
		return ""
	}
	e := Event{
		ID:          s.uniqueEventID(t),
		Name:        DefaultEventName,
		Date:        today(s.now()),
		Description: "",
		PictureURL:  PlaceholderImage,
		People:      []string{},
		Tags:        []string{},
		Media:       []string{},
	}
	t.Events = append(t.Events, e)
	s.persist(ctx)
	return e.ID
}

// UpdateEvent merges patch into the event. Unknown ids are ignored. A patch
// carrying a malformed date is rejected with ErrInvalidDate and changes
// nothing.
func (s *Store) UpdateEvent(ctx context.Context, timelineID, eventID string, patch EventPatch) error {
	if patch.Date != nil {
		if err := ValidateDate(*patch.Date); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(timelineID, eventID)
	if e == nil {
		return nil
	}
	patch.apply(e)
	s.persist(ctx)
	return nil
}

// DeleteEvent removes an event from its timeline. Unknown ids are ignored.
func (s *Store) DeleteEvent(ctx context.Context, timelineID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(timelineID)
	if t == nil {
		return
	}
	for i := range t.Events {
		if t.Events[i].ID == eventID {
			t.Events = append(t.Events[:i], t.Events[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// AddMedia appends payloads to the event's media gallery.
func (s *Store) AddMedia(ctx context.Context, timelineID, eventID string, payloads ...string) {
	if len(payloads) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(timelineID, eventID)
	if e == nil {
		return
	}
	e.Media = append(cloneStrings(e.Media), payloads...)
	s.persist(ctx)
}

// RemoveMedia removes the media item at index. Out-of-range indexes are
// ignored.
func (s *Store) RemoveMedia(ctx context.Context, timelineID, eventID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(timelineID, eventID)
	if e == nil || index < 0 || index >= len(e.Media) {
		return
	}
	media := make([]string, 0, len(e.Media)-1)
	media = append(media, e.Media[:index]...)
	media = append(media, e.Media[index+1:]...)
	e.Media = media
	s.persist(ctx)
}

func (s *Store) find(id string) *Timeline {
	for i := range s.timelines {
		if s.timelines[i].ID == id {
			return &s.timelines[i]
		}
	}
	return nil
}

func (s *Store) findEvent(timelineID, eventID string) *Event {
	t := s.find(timelineID)
	if t == nil {
		return nil
	}
	for i := range t.Events {
		if t.Events[i].ID == eventID {
			return &t.Events[i]
		}
	}
	return nil
}

// uniqueTimelineID draws ids until one is unused. A custom generator may
// repeat itself; the default one never does.
func (s *Store) uniqueTimelineID() string {
	for {
		id := s.newID(timelinePrefix)
		if s.find(id) == nil {
			return id
		}
	}
}

func (s *Store) uniqueEventID(t *Timeline) string {
	for {
		id := s.newID(eventPrefix)
		taken := false
		for _, e := range t.Events {
			if e.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// persist saves the collection. Must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	s.recordSize()
	if err := s.persister.Save(ctx, s.timelines); err != nil {
		s.log.Error("saving timelines to storage", "error", err)
		s.rec.SaveFailed()
		return
	}
	s.rec.SaveSucceeded()
}

func (s *Store) recordSize() {
	events := 0
	for _, t := range s.timelines {
		events += len(t.Events)
	}
	s.rec.CollectionSize(len(s.timelines), events)
}
