package timeline

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for event dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when an event date is not a YYYY-MM-DD
// calendar date.
var ErrInvalidDate = errors.New("invalid event date")

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// sortKey parses an event date for ordering. Unparseable dates sort as the
// zero time, ahead of every valid date.
func sortKey(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// today formats now as a UTC calendar date.
func today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
