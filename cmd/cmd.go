// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Library root (overrides library.root)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging and list every item in summaries",
		},
		&cli.BoolFlag{
			Name:  "no-journal",
			Usage: "Do not record the run in the history database",
		},
	}
}

// uploadCommand mirrors a folder onto albums
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload new images below a folder, one album per directory",
		ArgsUsage: "<folder>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "folder"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Upload as private regardless of library.public",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
		},
		Action: r.Upload,
	}
}

// permsCommand propagates a permission mask
func permsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "perms",
		Usage:     "Apply an octal permission mask (4=public, 2=friends, 1=family) to album assets",
		ArgsUsage: "<octal> <folder>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "mask"},
			&cli.StringArg{Name: "folder"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-recursive",
				Usage: "Only update the album of the given folder",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
		},
		Action: r.Perms,
	}
}

// fixCommand strips numeric ordering prefixes from album titles
func fixCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Rename albums created with numeric ordering prefixes",
		ArgsUsage: "<folder>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "folder"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
		},
		Action: r.Fix,
	}
}

func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "albums",
		Aliases: []string{"sets"},
		Usage:   "List remote albums",
		Flags: append(jsonFlags(), &cli.BoolFlag{
			Name:  "browse",
			Usage: "Open the interactive album browser",
		}),
		Action: r.Albums,
	}
}

func albumCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "album",
		Usage:     "Show an album and its assets",
		ArgsUsage: "<id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: append(jsonFlags(), &cli.BoolFlag{
			Name:  "full",
			Usage: "Include asset descriptions",
		}),
		Action: r.Album,
	}
}

func assetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "asset",
		Usage:     "Show a single asset",
		ArgsUsage: "<id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags:  jsonFlags(),
		Action: r.Asset,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the configured account",
		Flags:  jsonFlags(),
		Action: r.Whoami,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the remaining upload quota",
		Flags:  jsonFlags(),
		Action: r.Status,
	}
}

// historyCommand browses the run journal
func historyCommand(r *Runner) *cli.Command {
	listFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of runs to list",
			Value:   20,
			Local:   true,
		},
		&cli.StringFlag{
			Name:  "command",
			Usage: "Only list runs of this command (upload, perms, fix)",
			Local: true,
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Only list runs with this status",
			Local: true,
		},
	}

	return &cli.Command{
		Name:   "history",
		Usage:  "Journaled runs",
		Flags:  listFlags,
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a run and its items",
				ArgsUsage: "<run>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file; the format follows the extension",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only include items with this status (succeeded, skipped, failed)",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:      "delete",
				Usage:     "Remove a run from the history",
				ArgsUsage: "<run>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file or the journal database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
