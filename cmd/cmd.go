// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// libraryCommand handles local library operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage local library entries",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import entries from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON file with entries",
						Required: true,
					},
				},
				Action: r.LibraryImport,
			},
			{
				Name:  "list",
				Usage: "List library entries",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "show",
				Usage: "Show one entry with persistence metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryShow,
			},
		},
	}
}

// syncCommand handles batch metadata sync against the provider
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync entry metadata from the streaming catalog",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search candidate matches for library entries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ids",
						Usage: "Comma-separated entry IDs to search",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Search every entry in the library",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a report to this path",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (json or csv)",
					},
					&cli.StringFlag{
						Name:  "selections",
						Usage: "Write an editable selections template to this path",
					},
				},
				Action: r.SyncSearch,
			},
			{
				Name:  "apply",
				Usage: "Apply reviewed candidate selections to the library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "selections",
						Aliases:  []string{"s"},
						Usage:    "Path to selections JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a report to this path",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (json or csv)",
					},
				},
				Action: r.SyncApply,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive metadata sync.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for metadata sync",
		Action:  r.TUI,
	}
}
