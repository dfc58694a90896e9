package timeline

import (
	"slices"
	"sort"
	"strings"
)

// DistinctPeople returns every person named across events, in first-seen
// order.
func DistinctPeople(events []Event) []string {
	return distinct(events, func(e Event) []string { return e.People })
}

// DistinctTags returns every tag used across events, in first-seen order.
func DistinctTags(events []Event) []string {
	return distinct(events, func(e Event) []string { return e.Tags })
}

func distinct(events []Event, field func(Event) []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range events {
		for _, v := range field(e) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// VisibleEvents filters events by person and tag and sorts them by date,
// oldest first. An empty filter matches every event. Events sharing a date
// keep their input order.
func VisibleEvents(events []Event, person, tag string) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if person != "" && !slices.Contains(e.People, person) {
			continue
		}
		if tag != "" && !slices.Contains(e.Tags, tag) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i].Date).Before(sortKey(out[j].Date))
	})
	return out
}

// ParseList splits a comma-separated list, trimming items and dropping
// empty ones.
func ParseList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
