// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config and database, run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles OAuth token bootstrap.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication operations",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Store an OAuth refresh token for remote access",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "refresh-token",
						Usage:    "OAuth refresh token",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "access-token",
						Usage: "Optional current access token",
					},
				},
				Action: r.AuthLogin,
			},
		},
	}
}

// syncCommand runs one full sync cycle.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one full sync of the remote library",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "thumbnails",
				Usage: "Prefetch thumbnails after syncing",
				Value: true,
			},
		},
		Action: r.Sync,
	}
}

// watchCommand runs the periodic scheduler until interrupted.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Sync periodically until interrupted",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Watch,
	}
}

// listCommand lists cached media items with filters.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List cached media items",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "favorite",
				Usage: "Only favorites",
			},
			&cli.StringFlag{
				Name:  "mime",
				Usage: "Filter by MIME type",
			},
			&cli.StringFlag{
				Name:  "camera-make",
				Usage: "Filter by camera make",
			},
			&cli.StringFlag{
				Name:  "camera-model",
				Usage: "Filter by camera model",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only items created on or after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "until",
				Usage: "Only items created on or before this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "album",
				Usage: "Only items in this album",
			},
			&cli.BoolFlag{
				Name:  "faces",
				Usage: "Only items with face tags",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.List,
	}
}

// searchCommand searches filenames and descriptions.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search cached items by filename or description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Search,
	}
}

// favoriteCommand toggles the local favorite flag.
func favoriteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "favorite",
		Usage: "Mark or unmark a cached item as favorite",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "unset",
				Usage: "Remove the favorite mark",
			},
		},
		Action: r.Favorite,
	}
}

// albumsCommand handles album operations.
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Album operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached albums",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.AlbumsList,
			},
			{
				Name:  "create",
				Usage: "Create an album remotely and cache it",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "title",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.AlbumsCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename an album",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Album ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "New title",
						Required: true,
					},
				},
				Action: r.AlbumsRename,
			},
			{
				Name:  "delete",
				Usage: "Delete an album (cached items stay)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Album ID",
						Required: true,
					},
				},
				Action: r.AlbumsDelete,
			},
			{
				Name:  "add-item",
				Usage: "Add a cached item to an album",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Album ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "item",
						Usage:    "Media item ID",
						Required: true,
					},
				},
				Action: r.AlbumsAddItem,
			},
			{
				Name:  "items",
				Usage: "List the items of an album",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Album ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.AlbumsItems,
			},
		},
	}
}

// facesCommand handles face tag operations.
func facesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "faces",
		Usage: "Face tag operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show face tags for an item",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.FacesShow,
			},
			{
				Name:  "import",
				Usage: "Import face tags from a JSON file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input JSON file",
						Required: true,
					},
				},
				Action: r.FacesImport,
			},
			{
				Name:  "export",
				Usage: "Export all face tags to a JSON file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output JSON file",
						Value:   "faces.json",
					},
				},
				Action: r.FacesExport,
			},
		},
	}
}

// statsCommand reports cached entity counts.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show cache statistics",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Stats,
	}
}

// clearCommand wipes the local cache.
func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all cached data and reset sync state",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Skip confirmation",
			},
		},
		Action: r.Clear,
	}
}

// exportCommand writes cached entities to JSON files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export cached data to JSON",
		Commands: []*cli.Command{
			{
				Name:  "items",
				Usage: "Export media items",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "items.json",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Write CSV instead of JSON",
					},
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Write a Markdown listing instead of JSON",
					},
				},
				Action: r.ExportItems,
			},
			{
				Name:  "albums",
				Usage: "Export albums",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "albums.json",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Write CSV instead of JSON",
					},
				},
				Action: r.ExportAlbums,
			},
			{
				Name:  "faces",
				Usage: "Export face tags",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "faces.json",
					},
				},
				Action: r.FacesExport,
			},
		},
	}
}

// importCommand loads entities from JSON files.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import data from JSON",
		Commands: []*cli.Command{
			{
				Name:  "items",
				Usage: "Import media items",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input file path",
						Required: true,
					},
				},
				Action: r.ImportItems,
			},
			{
				Name:  "faces",
				Usage: "Import face tags",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input file path",
						Required: true,
					},
				},
				Action: r.FacesImport,
			},
		},
	}
}
