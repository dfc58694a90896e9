package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
	DBPath  string `long:"db-path" description:"Use this SQLite file instead of the configured storage"`
}

// ListCommand lists all timelines.
type ListCommand struct {
	globals *GlobalFlags
	version string
}

// CreateCommand creates a timeline, optionally setting its fields.
type CreateCommand struct {
	Name        *string `long:"name" description:"Timeline name"`
	Description *string `long:"description" description:"Timeline description"`
	Picture     *string `long:"picture" description:"Picture URL or data URI"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints a timeline with its filtered, date-sorted events.
type ShowCommand struct {
	ID     string `long:"id" description:"Timeline ID (required)"`
	Person string `long:"person" description:"Only events that include this person"`
	Tag    string `long:"tag" description:"Only events that carry this tag"`

	globals *GlobalFlags
	version string
}

// EditCommand updates a timeline's fields.
type EditCommand struct {
	ID          string  `long:"id" description:"Timeline ID (required)"`
	Name        *string `long:"name" description:"New name"`
	Description *string `long:"description" description:"New description"`
	Picture     *string `long:"picture" description:"New picture URL or data URI"`

	globals *GlobalFlags
	version string
}

// DeleteCommand deletes a timeline and all of its events.
type DeleteCommand struct {
	ID    string `long:"id" description:"Timeline ID (required)"`
	Force bool   `long:"force" description:"Skip confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil means os.Stdin
}

// EventFields are the optional event fields shared by add-event and
// edit-event. People and tags take comma-separated lists.
type EventFields struct {
	Name        *string `long:"name" description:"Event name"`
	Date        *string `long:"date" description:"Event date (YYYY-MM-DD)"`
	Description *string `long:"description" description:"Event description"`
	Picture     *string `long:"picture" description:"Picture URL or data URI"`
	People      *string `long:"people" description:"Comma-separated people"`
	Tags        *string `long:"tags" description:"Comma-separated tags"`
}

// AddEventCommand appends an event to a timeline.
type AddEventCommand struct {
	Timeline string `long:"timeline" description:"Timeline ID (required)"`
	EventFields

	globals *GlobalFlags
	version string
}

// EditEventCommand updates an event's fields.
type EditEventCommand struct {
	Timeline string `long:"timeline" description:"Timeline ID (required)"`
	Event    string `long:"event" description:"Event ID (required)"`
	EventFields

	globals *GlobalFlags
	version string
}

// DeleteEventCommand removes an event from its timeline.
type DeleteEventCommand struct {
	Timeline string `long:"timeline" description:"Timeline ID (required)"`
	Event    string `long:"event" description:"Event ID (required)"`

	globals *GlobalFlags
	version string
}

// AddMediaCommand appends files or raw payloads to an event's gallery.
type AddMediaCommand struct {
	Timeline string   `long:"timeline" description:"Timeline ID (required)"`
	Event    string   `long:"event" description:"Event ID (required)"`
	File     []string `long:"file" description:"File to embed as a data URI (repeatable)"`
	Data     []string `long:"data" description:"Raw media payload (repeatable)"`

	globals *GlobalFlags
	version string
}

// RemoveMediaCommand removes one gallery item by position.
type RemoveMediaCommand struct {
	Timeline string `long:"timeline" description:"Timeline ID (required)"`
	Event    string `long:"event" description:"Event ID (required)"`
	Index    int    `long:"index" description:"Zero-based gallery position" default:"-1"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows storage health and collection statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ServeCommand runs the local HTTP API.
type ServeCommand struct {
	Host      string `long:"host" description:"Override listen host"`
	Port      int    `long:"port" description:"Override listen port"`
	Ephemeral bool   `long:"ephemeral" description:"Keep data in memory only"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes the stored collection with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil means os.Stdin
}
