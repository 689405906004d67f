// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (.toml, .yaml or .yml)",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "Catalog API base URL (overrides config and MVX_API_URL)",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session in memory instead of the database",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, markdown, csv or json",
			Value: "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to a file instead of stdout",
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "Per-movie file format: text, markdown, csv or json",
			Value: "json",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Output directory (default: mvx_export_{timestamp})",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent writers (max 10)",
			Value: 4,
		},
		&cli.BoolFlag{
			Name:  "credits",
			Usage: "Include cast and directors",
		},
	}
}

func pageFlag(first int) cli.Flag {
	return &cli.IntFlag{
		Name:  "page",
		Usage: "Page number",
		Value: first,
	}
}

// setupCommand handles setup operations for the configuration file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles the catalog session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the catalog session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password and persist the token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the persisted session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the session state, user and token claims",
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Search and browse movies",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     append([]cli.Flag{pageFlag(1)}, formatFlags()...),
				Action:    r.MoviesSearch,
			},
			{
				Name:   "popular",
				Usage:  "List popular movies",
				Flags:  append([]cli.Flag{pageFlag(1)}, formatFlags()...),
				Action: r.MoviesPopular,
			},
			{
				Name:      "show",
				Usage:     "Show one movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "credits",
						Usage: "Include cast and directors",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the movie's page in the browser",
					},
				}, formatFlags()...),
				Action: r.MoviesShow,
			},
			{
				Name:      "export",
				Usage:     "Export movies to one file each, with a manifest",
				ArgsUsage: "<id> [id...]",
				Flags:     exportFlags(),
				Action:    r.MoviesExport,
			},
		},
	}
}

// favoritesCommand handles the logged-in user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorites (requires login)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorites, most recent first",
				Flags: append([]cli.Flag{
					pageFlag(1),
					&cli.IntFlag{
						Name:  "size",
						Usage: "Page size (defaults to ui.page_size)",
					},
				}, formatFlags()...),
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
			{
				Name:   "export",
				Usage:  "Export every favorite to one file each, with a manifest",
				Flags:  exportFlags(),
				Action: r.FavoritesExport,
			},
		},
	}
}

// watchLaterCommand handles the watch-later list
func watchLaterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch-later",
		Usage: "Manage watch-later (requires login)",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a movie to watch-later",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WatchLaterAdd,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}

// devCommand runs the in-memory catalog server
func devCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Development helpers",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the catalog API from an in-memory seed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to server.host:server.port)",
					},
					&cli.DurationFlag{
						Name:  "token-ttl",
						Usage: "Lifetime of issued tokens (defaults to server.token_ttl)",
						Value: time.Duration(0),
					},
				},
				Action: r.DevServe,
			},
		},
	}
}
