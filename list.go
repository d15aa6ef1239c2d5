package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/tagging"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List the playlists of the repository.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			colorError.Printf("❌ %v\n", err)
			return
		}
		defer s.Close()

		cat, err := s.scan()
		if err != nil {
			colorError.Printf("❌ %v\n", err)
			return
		}
		if len(cat.Playlists) == 0 {
			colorWarning.Println("⚠️  No playlists in repository", s.cfg.RepoDir)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Playlist", "ID", "Songs", "Junk"})
		for i, pl := range cat.Playlists {
			t.AppendRow(table.Row{i + 1, pl.Name, pl.ID, len(pl.Songs), pl.JunkCount()})
		}
		t.Render()
	},
}

var songsCmd = &cobra.Command{
	Use:   "songs [index]",
	Short: "List songs, across the repository or one playlist.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runListing(args, false)
	},
}

var junksCmd = &cobra.Command{
	Use:   "junks [index]",
	Short: "List junk songs awaiting recognition or cleanup.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runListing(args, true)
	},
}

func runListing(args []string, junkOnly bool) {
	s, err := openSession()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	defer s.Close()

	cat, err := s.scan()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	indexArg := ""
	if len(args) == 1 {
		indexArg = args[0]
	}
	sel, scope, err := s.selectSongs(cat, junkOnly, indexArg)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	if len(sel.Songs) == 0 {
		colorWarning.Println("⚠️  No matching songs in", scope)
		return
	}

	colorInfo.Printf("🎵 %d song(s) in %s\n", len(sel.Songs), scope)
	printSongs(sel)
}

func printSongs(sel catalog.Selection) {
	if verbose {
		sel.Songs = tagging.Hydrate(sel.Songs)
	}
	for i, song := range sel.Songs {
		marker := "  "
		printer := colorSuccess
		if song.State == catalog.StateJunk {
			marker = "🗑 "
			printer = colorWarning
		}
		printer.Printf("%3d. %s%s", i+1, marker, song.DisplayName())
		if filter != "" {
			printer.Printf("  (%d%%)", sel.Scores[i])
		}
		printer.Println()
		if verbose {
			cover := "no cover art"
			if song.HasCoverArt {
				cover = "cover art"
			}
			colorInfo.Printf("      %s | %s | %s\n", song.DurationLabel(), cover, song.WatchURL())
		}
	}
}
