package timeline

import "github.com/google/uuid"

// IDGenerator produces identifiers for new records. Prefix is "proj" for
// timelines and "ev" for events.
type IDGenerator func(prefix string) string

// NewID creates an identifier of the form <prefix>-<uuid>.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

const (
	timelinePrefix = "proj"
	eventPrefix    = "ev"
)
