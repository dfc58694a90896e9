package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List        *ListCommand
	Create      *CreateCommand
	Show        *ShowCommand
	Edit        *EditCommand
	Delete      *DeleteCommand
	AddEvent    *AddEventCommand
	EditEvent   *EditEventCommand
	DeleteEvent *DeleteEventCommand
	AddMedia    *AddMediaCommand
	RemoveMedia *RemoveMediaCommand
	Status      *StatusCommand
	Serve       *ServeCommand
	Purge       *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "timelines"
	parser.LongDescription = "Create and browse personal timelines of dated events, people and tags."

	cmds := &commands{
		List:        &ListCommand{globals: &globals, version: version},
		Create:      &CreateCommand{globals: &globals, version: version},
		Show:        &ShowCommand{globals: &globals, version: version},
		Edit:        &EditCommand{globals: &globals, version: version},
		Delete:      &DeleteCommand{globals: &globals, version: version},
		AddEvent:    &AddEventCommand{globals: &globals, version: version},
		EditEvent:   &EditEventCommand{globals: &globals, version: version},
		DeleteEvent: &DeleteEventCommand{globals: &globals, version: version},
		AddMedia:    &AddMediaCommand{globals: &globals, version: version},
		RemoveMedia: &RemoveMediaCommand{globals: &globals, version: version},
		Status:      &StatusCommand{globals: &globals, version: version},
		Serve:       &ServeCommand{globals: &globals, version: version},
		Purge:       &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("list", "List timelines", "List all timelines with their event counts.", cmds.List)
	parser.AddCommand("create", "Create a timeline", "Create a new timeline with placeholder values, optionally setting its fields.", cmds.Create)
	parser.AddCommand("show", "Show a timeline", "Show a timeline with its people, tags and date-sorted events, optionally filtered by person and tag.", cmds.Show)
	parser.AddCommand("edit", "Edit a timeline", "Change a timeline's name, description or picture.", cmds.Edit)
	parser.AddCommand("delete", "Delete a timeline", "Delete a timeline and all of its events.", cmds.Delete)
	parser.AddCommand("add-event", "Add an event", "Append an event dated today to a timeline, optionally setting its fields.", cmds.AddEvent)
	parser.AddCommand("edit-event", "Edit an event", "Change an event's fields.", cmds.EditEvent)
	parser.AddCommand("delete-event", "Delete an event", "Remove an event from its timeline.", cmds.DeleteEvent)
	parser.AddCommand("add-media", "Add media to an event", "Append files or raw payloads to an event's media gallery.", cmds.AddMedia)
	parser.AddCommand("remove-media", "Remove media from an event", "Remove one item from an event's media gallery by position.", cmds.RemoveMedia)
	parser.AddCommand("status", "Show storage health and statistics", "Show storage statistics, collection counts and server status.", cmds.Status)
	parser.AddCommand("serve", "Run the local HTTP API", "Serve the timeline collection over a local JSON HTTP API.", cmds.Serve)
	parser.AddCommand("purge", "Delete ALL timeline data", "Delete ALL timeline data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the timelines CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("timelines %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
