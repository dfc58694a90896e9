package timeline

// PlaceholderImage is assigned to new timelines and events until a real
// picture is uploaded.
const PlaceholderImage = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iODAwIiBoZWlnaHQ9IjQwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwJSIgaGVpZ2h0PSIxMDAlIiBmaWxsPSIjNDc1NTY5IiAvPjx0ZXh0IHg9IjUwJSIgeT0iNTAlIiBmb250LWZhbWlseT0iQXJpYWwiIGZvbnQtc2l6ZT0iMjAiIGZpbGw9IiNjN2QyZTAiIHRleHQtYW5jaG9yPSJtaWRkbGUiIGR5PSIuM2VtIj5VcGxvYWQgYW4gaW1hZ2U8L3RleHQ+PC9zdmc+"

// Defaults for newly created records.
const (
	DefaultTimelineName        = "New Timeline"
	DefaultTimelineDescription = "A brief description of your new timeline."
	DefaultEventName           = "New Event"
)

// Timeline is a named collection of dated events.
type Timeline struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PictureURL  string  `json:"pictureUrl"`
	Events      []Event `json:"events"`
}

// Event is a single dated occurrence within a timeline. Date is a
// YYYY-MM-DD calendar date without a time component.
type Event struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	PictureURL  string   `json:"pictureUrl"`
	People      []string `json:"people"`
	Tags        []string `json:"tags"`
	Media       []string `json:"media"` // display order
}

// TimelinePatch is a partial update of a timeline. Nil fields are left
// untouched.
type TimelinePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PictureURL  *string `json:"pictureUrl,omitempty"`
}

// EventPatch is a partial update of an event. Nil fields are left untouched.
type EventPatch struct {
	Name        *string   `json:"name,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Description *string   `json:"description,omitempty"`
	PictureURL  *string   `json:"pictureUrl,omitempty"`
	People      *[]string `json:"people,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Media       *[]string `json:"media,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TimelinePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.PictureURL == nil
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Date == nil && p.Description == nil &&
		p.PictureURL == nil && p.People == nil && p.Tags == nil && p.Media == nil
}

func (p TimelinePatch) apply(t *Timeline) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PictureURL != nil {
		t.PictureURL = *p.PictureURL
	}
}

func (p EventPatch) apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.PictureURL != nil {
		e.PictureURL = *p.PictureURL
	}
	if p.People != nil {
		e.People = cloneStrings(*p.People)
	}
	if p.Tags != nil {
		e.Tags = cloneStrings(*p.Tags)
	}
	if p.Media != nil {
		e.Media = cloneStrings(*p.Media)
	}
}

// clone returns a deep copy of the timeline.
func (t Timeline) clone() Timeline {
	out := t
	out.Events = make([]Event, len(t.Events))
	for i, e := range t.Events {
		out.Events[i] = e.clone()
	}
	return out
}

func (e Event) clone() Event {
	out := e
	out.People = cloneStrings(e.People)
	out.Tags = cloneStrings(e.Tags)
	out.Media = cloneStrings(e.Media)
	return out
}

// normalize replaces nil sequences with empty ones.
func (t *Timeline) normalize() {
	if t.Events == nil {
		t.Events = []Event{}
	}
	for i := range t.Events {
		e := &t.Events[i]
		if e.People == nil {
			e.People = []string{}
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		if e.Media == nil {
			e.Media = []string{}
		}
	}
}

// cloneStrings copies s, never returning nil.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Strings returns a pointer to s, for building patches.
func Strings(s ...string) *[]string {
	out := cloneStrings(s)
	return &out
}
