package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(id, date string, people, tags []string) Event {
	return Event{ID: id, Date: date, People: people, Tags: tags, Media: []string{}}
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func sampleEvents() []Event {
	return []Event{
		ev("e1", "2021-05-01", []string{"Alice", "Bob"}, []string{"trip"}),
		ev("e2", "2019-03-01", []string{"Bob"}, []string{"family", "trip"}),
		ev("e3", "2020-01-05", []string{"Carol"}, []string{"family"}),
		ev("e4", "2020-01-05", []string{"Alice"}, []string{}),
	}
}

func TestDistinctPeople(t *testing.T) {
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, DistinctPeople(sampleEvents()))
}

func TestDistinctTags(t *testing.T) {
	assert.Equal(t, []string{"trip", "family"}, DistinctTags(sampleEvents()))
}

func TestDistinct_Empty(t *testing.T) {
	assert.Equal(t, []string{}, DistinctPeople(nil))
	assert.Equal(t, []string{}, DistinctTags([]Event{}))
}

func TestDistinct_DuplicatesWithinEvent(t *testing.T) {
	events := []Event{ev("e1", "2020-01-01", []string{"Alice", "Alice"}, []string{"x", "x"})}
	assert.Equal(t, []string{"Alice"}, DistinctPeople(events))
	assert.Equal(t, []string{"x"}, DistinctTags(events))
}

func TestVisibleEvents_NoFilterSortsStable(t *testing.T) {
	got := VisibleEvents(sampleEvents(), "", "")
	assert.Equal(t, []string{"e2", "e3", "e4", "e1"}, ids(got))
}

func TestVisibleEvents_TiesKeepInputOrder(t *testing.T) {
	events := []Event{
		ev("b", "2020-01-05", nil, nil),
		ev("a", "2020-01-05", nil, nil),
		ev("c", "2020-01-05", nil, nil),
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids(VisibleEvents(events, "", "")))
}

func TestVisibleEvents_PersonFilter(t *testing.T) {
	got := VisibleEvents(sampleEvents(), "Alice", "")
	assert.Equal(t, []string{"e4", "e1"}, ids(got))
}

func TestVisibleEvents_TagFilter(t *testing.T) {
	got := VisibleEvents(sampleEvents(), "", "family")
	assert.Equal(t, []string{"e2", "e3"}, ids(got))
}

func TestVisibleEvents_BothFiltersConjoin(t *testing.T) {
	got := VisibleEvents(sampleEvents(), "Bob", "family")
	assert.Equal(t, []string{"e2"}, ids(got))

	assert.Empty(t, VisibleEvents(sampleEvents(), "Carol", "trip"))
}

func TestVisibleEvents_UnknownFilter(t *testing.T) {
	got := VisibleEvents(sampleEvents(), "Dave", "")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVisibleEvents_DoesNotReorderInput(t *testing.T) {
	events := sampleEvents()
	VisibleEvents(events, "", "")
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, ids(events))
}

func TestVisibleEvents_MalformedDatesSortFirst(t *testing.T) {
	events := []Event{
		ev("valid", "1999-12-31", nil, nil),
		ev("bad1", "soon", nil, nil),
		ev("empty", "", nil, nil),
		ev("bad2", "2020-13-01", nil, nil),
	}
	got := VisibleEvents(events, "", "")
	assert.Equal(t, []string{"bad1", "empty", "bad2", "valid"}, ids(got))
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"Alice", []string{"Alice"}},
		{"Alice, Bob ,Carol", []string{"Alice", "Bob", "Carol"}},
		{" , ,Alice,,", []string{"Alice"}},
		{"New York, Paris", []string{"New York", "Paris"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseList(tc.in), "input %q", tc.in)
	}
}
