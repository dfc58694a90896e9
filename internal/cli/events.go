package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/timelines/internal/timeline"
)

// Execute implements the go-flags Commander interface for AddEventCommand.
func (c *AddEventCommand) Execute(args []string) error {
	if c.Timeline == "" {
		return fmt.Errorf("--timeline is required for add-event command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs add-event against a provided store (used by tests).
func (c *AddEventCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	patch := c.eventPatch()
	if patch.Date != nil {
		if err := timeline.ValidateDate(*patch.Date); err != nil {
			return err
		}
	}

	eventID := store.AddEvent(ctx, c.Timeline)
	if eventID == "" {
		return fmt.Errorf("timeline not found: %s", c.Timeline)
	}
	if !patch.IsEmpty() {
		if err := store.UpdateEvent(ctx, c.Timeline, eventID, patch); err != nil {
			return err
		}
	}

	return printEvent(c.globals, store, c.Timeline, eventID, "Added")
}

// Execute implements the go-flags Commander interface for EditEventCommand.
func (c *EditEventCommand) Execute(args []string) error {
	if c.Timeline == "" || c.Event == "" {
		return fmt.Errorf("--timeline and --event are required for edit-event command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs edit-event against a provided store (used by tests).
func (c *EditEventCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	patch := c.eventPatch()
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass at least one event field")
	}
	if _, ok := findEvent(store, c.Timeline, c.Event); !ok {
		return fmt.Errorf("event not found: %s/%s", c.Timeline, c.Event)
	}

	if err := store.UpdateEvent(ctx, c.Timeline, c.Event, patch); err != nil {
		return err
	}

	return printEvent(c.globals, store, c.Timeline, c.Event, "Updated")
}

// Execute implements the go-flags Commander interface for DeleteEventCommand.
func (c *DeleteEventCommand) Execute(args []string) error {
	if c.Timeline == "" || c.Event == "" {
		return fmt.Errorf("--timeline and --event are required for delete-event command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs delete-event against a provided store (used by tests).
func (c *DeleteEventCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	if _, ok := findEvent(store, c.Timeline, c.Event); !ok {
		return fmt.Errorf("event not found: %s/%s", c.Timeline, c.Event)
	}

	store.DeleteEvent(ctx, c.Timeline, c.Event)

	if jsonOutput(c.globals) {
		return printJSON(map[string]interface{}{"timeline": c.Timeline, "id": c.Event, "deleted": true})
	}
	fmt.Printf("Deleted event %s\n", c.Event)
	return nil
}

// Execute implements the go-flags Commander interface for AddMediaCommand.
func (c *AddMediaCommand) Execute(args []string) error {
	if c.Timeline == "" || c.Event == "" {
		return fmt.Errorf("--timeline and --event are required for add-media command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs add-media against a provided store (used by tests).
func (c *AddMediaCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	if len(c.File) == 0 && len(c.Data) == 0 {
		return fmt.Errorf("pass at least one --file or --data")
	}
	if _, ok := findEvent(store, c.Timeline, c.Event); !ok {
		return fmt.Errorf("event not found: %s/%s", c.Timeline, c.Event)
	}

	payloads := make([]string, 0, len(c.File)+len(c.Data))
	for _, path := range c.File {
		uri, err := fileDataURI(path)
		if err != nil {
			return err
		}
		payloads = append(payloads, uri)
	}
	payloads = append(payloads, c.Data...)

	store.AddMedia(ctx, c.Timeline, c.Event, payloads...)

	return printEvent(c.globals, store, c.Timeline, c.Event, "Updated")
}

// Execute implements the go-flags Commander interface for RemoveMediaCommand.
func (c *RemoveMediaCommand) Execute(args []string) error {
	if c.Timeline == "" || c.Event == "" {
		return fmt.Errorf("--timeline and --event are required for remove-media command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs remove-media against a provided store (used by tests).
func (c *RemoveMediaCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	e, ok := findEvent(store, c.Timeline, c.Event)
	if !ok {
		return fmt.Errorf("event not found: %s/%s", c.Timeline, c.Event)
	}
	if c.Index < 0 || c.Index >= len(e.Media) {
		return fmt.Errorf("--index %d out of range: event has %d media item(s)", c.Index, len(e.Media))
	}

	store.RemoveMedia(ctx, c.Timeline, c.Event, c.Index)

	return printEvent(c.globals, store, c.Timeline, c.Event, "Updated")
}

func findEvent(store *timeline.Store, timelineID, eventID string) (timeline.Event, bool) {
	t, ok := store.Timeline(timelineID)
	if !ok {
		return timeline.Event{}, false
	}
	for _, e := range t.Events {
		if e.ID == eventID {
			return e, true
		}
	}
	return timeline.Event{}, false
}

func printEvent(globals *GlobalFlags, store *timeline.Store, timelineID, eventID, verb string) error {
	e, ok := findEvent(store, timelineID, eventID)
	if !ok {
		return fmt.Errorf("event not found: %s/%s", timelineID, eventID)
	}

	if jsonOutput(globals) {
		return printJSON(e)
	}

	fmt.Printf("%s event %s (%s)\n", verb, e.ID, e.Date)
	fmt.Printf("  Name:   %s\n", e.Name)
	fmt.Printf("  People: %s\n", joinOrNone(e.People))
	fmt.Printf("  Tags:   %s\n", joinOrNone(e.Tags))
	fmt.Printf("  Media:  %d\n", len(e.Media))
	return nil
}
