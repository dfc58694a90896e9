package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/timelines/internal/timeline"
)

// timelineSummaryJSON is one row of list output.
type timelineSummaryJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Events      int    `json:"events"`
}

// timelineViewJSON is the JSON output of the show command.
type timelineViewJSON struct {
	timeline.Timeline
	People        []string         `json:"people"`
	Tags          []string         `json:"tags"`
	PersonFilter  string           `json:"person_filter,omitempty"`
	TagFilter     string           `json:"tag_filter,omitempty"`
	VisibleEvents []timeline.Event `json:"visible_events"`
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs list against a provided store (used by tests).
func (c *ListCommand) executeWithStore(_ context.Context, store *timeline.Store) error {
	all := store.Timelines()

	if jsonOutput(c.globals) {
		out := make([]timelineSummaryJSON, len(all))
		for i, t := range all {
			out[i] = timelineSummaryJSON{ID: t.ID, Name: t.Name, Description: t.Description, Events: len(t.Events)}
		}
		return printJSON(out)
	}

	if len(all) == 0 {
		fmt.Println("No timelines yet. Create one with: timelines create --name \"My Timeline\"")
		return nil
	}

	for _, t := range all {
		fmt.Printf("%-42s %-30s %d events\n", t.ID, truncate(t.Name, 30), len(t.Events))
	}
	return nil
}

// Execute implements the go-flags Commander interface for CreateCommand.
func (c *CreateCommand) Execute(args []string) error {
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs create against a provided store (used by tests).
func (c *CreateCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	id := store.CreateTimeline(ctx)

	patch := timeline.TimelinePatch{Name: c.Name, Description: c.Description, PictureURL: c.Picture}
	if !patch.IsEmpty() {
		store.UpdateTimeline(ctx, id, patch)
	}

	t, _ := store.Timeline(id)
	if jsonOutput(c.globals) {
		return printJSON(t)
	}
	fmt.Printf("Created timeline %s\n", t.ID)
	fmt.Printf("  Name: %s\n", t.Name)
	return nil
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for show command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs show against a provided store (used by tests).
func (c *ShowCommand) executeWithStore(_ context.Context, store *timeline.Store) error {
	t, ok := store.Timeline(c.ID)
	if !ok {
		return fmt.Errorf("timeline not found: %s", c.ID)
	}

	people := timeline.DistinctPeople(t.Events)
	tags := timeline.DistinctTags(t.Events)
	visible := timeline.VisibleEvents(t.Events, c.Person, c.Tag)

	if jsonOutput(c.globals) {
		return printJSON(timelineViewJSON{
			Timeline:      t,
			People:        people,
			Tags:          tags,
			PersonFilter:  c.Person,
			TagFilter:     c.Tag,
			VisibleEvents: visible,
		})
	}

	fmt.Printf("%s (%s)\n", t.Name, t.ID)
	if t.Description != "" {
		fmt.Println(t.Description)
	}
	fmt.Println()
	fmt.Printf("People: %s\n", joinOrNone(people))
	fmt.Printf("Tags:   %s\n", joinOrNone(tags))
	if c.Person != "" || c.Tag != "" {
		fmt.Printf("Filter: person=%q tag=%q\n", c.Person, c.Tag)
	}
	fmt.Println()

	if len(visible) == 0 {
		if len(t.Events) == 0 {
			fmt.Println("No events yet.")
		} else {
			fmt.Println("No events match the current filter.")
		}
		return nil
	}

	for _, e := range visible {
		fmt.Printf("%-10s  %s  [%s]\n", e.Date, e.Name, e.ID)
		if e.Description != "" {
			fmt.Printf("            %s\n", truncate(e.Description, 70))
		}
		if len(e.People) > 0 || len(e.Tags) > 0 {
			fmt.Printf("            people: %s  tags: %s\n", joinOrNone(e.People), joinOrNone(e.Tags))
		}
		if len(e.Media) > 0 {
			fmt.Printf("            media: %d item(s)\n", len(e.Media))
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for EditCommand.
func (c *EditCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for edit command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs edit against a provided store (used by tests).
func (c *EditCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	patch := timeline.TimelinePatch{Name: c.Name, Description: c.Description, PictureURL: c.Picture}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass --name, --description or --picture")
	}
	if _, ok := store.Timeline(c.ID); !ok {
		return fmt.Errorf("timeline not found: %s", c.ID)
	}

	store.UpdateTimeline(ctx, c.ID, patch)

	t, _ := store.Timeline(c.ID)
	if jsonOutput(c.globals) {
		return printJSON(t)
	}
	fmt.Printf("Updated timeline %s\n", t.ID)
	return nil
}

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for delete command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs delete against a provided store (used by tests).
func (c *DeleteCommand) executeWithStore(ctx context.Context, store *timeline.Store) error {
	t, ok := store.Timeline(c.ID)
	if !ok {
		return fmt.Errorf("timeline not found: %s", c.ID)
	}

	if !c.Force {
		fmt.Printf("Delete timeline %q and its %d event(s)? This cannot be undone.\n", t.Name, len(t.Events))
		fmt.Print(`Type "yes" to confirm: `)

		var in io.Reader = os.Stdin
		if c.stdin != nil {
			in = c.stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "yes" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	store.DeleteTimeline(ctx, c.ID)

	if jsonOutput(c.globals) {
		return printJSON(map[string]interface{}{"id": c.ID, "deleted": true})
	}
	fmt.Printf("Deleted timeline %s\n", c.ID)
	return nil
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}
