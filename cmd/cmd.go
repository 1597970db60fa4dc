// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// loadCommand records an artist and its current discography.
func loadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load an artist's releases into the database",
		ArgsUsage: "<artist_id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "artist_id"},
		},
		Action: r.Load,
	}
}

// checkCommand diffs every artist against the catalog.
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Check for new releases for all tracked artists",
		Action: r.Check,
	}
}

// listCommand prints tracked artists.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all tracked artists",
		Action:  r.List,
	}
}

// showCommand prints one artist's stored releases.
func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "list-artist",
		Aliases:   []string{"show"},
		Usage:     "Show an artist's stored releases and their verification state",
		ArgsUsage: "<artist_name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Action: r.Show,
	}
}

// playlistsCommand prints generated playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "playlists",
		Usage:  "List generated playlists",
		Action: r.Playlists,
	}
}

// genPlaylistCommand builds a playlist from recent verified tracks.
func genPlaylistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "gen-playlist",
		Usage:  "Generate a playlist of tracks added since the last playlist",
		Action: r.GenPlaylist,
	}
}

// checkGenCommand runs check followed by gen-playlist.
func checkGenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "check-gen",
		Usage:  "Check for new releases, then generate a playlist",
		Action: r.CheckGen,
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a starter config.toml",
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing the tracked catalog.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch interactive TUI for browsing artists and checking for new releases",
		Action:  r.TUI,
	}
}
