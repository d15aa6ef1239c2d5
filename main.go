package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const toolVersion = "1.0.0"

var (
	repoFlag     string
	debug        bool
	playlistFlag string
	filter       string
	matchLevel   int
	shazamLevel  int
	promptEach   bool
	verbose      bool
	shuffle      bool
)

var rootCmd = &cobra.Command{
	Use:     "pypl2mp3",
	Version: toolVersion,
	Short:   "YouTube playlist to MP3 catalog manager and terminal player.",
	Long: fmt.Sprintf(`pypl2mp3 (v%s)

Synchronizes YouTube playlists into a local MP3 repository, names and
tags songs via Shazam-style recognition, and plays them in the
terminal. The repository's directory tree is the only database:
every song's identity and state live in its filename.`, toolVersion),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository directory (default $HOME/pypl2mp3, or PYPL2MP3_REPO)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log extra diagnostics")

	for _, cmd := range []*cobra.Command{songsCmd, junksCmd, fixCmd, junkizeCmd, untagCmd, videosCmd, playCmd} {
		cmd.Flags().StringVar(&playlistFlag, "playlist", "", "Playlist id, URL, or 1-based index (default: whole repository)")
	}
	for _, cmd := range []*cobra.Command{importCmd, songsCmd, junksCmd, fixCmd, junkizeCmd, untagCmd, videosCmd} {
		cmd.Flags().StringVar(&filter, "filter", "", "Keep only songs fuzzy-matching these keywords")
	}
	// -1 means "not given" so an explicit --match=0 or --thresh=0 is
	// distinguishable from the configured default.
	for _, cmd := range []*cobra.Command{importCmd, songsCmd, junksCmd, fixCmd, junkizeCmd, untagCmd, videosCmd, playCmd} {
		cmd.Flags().IntVar(&matchLevel, "match", -1, "Minimum fuzzy match score, 0-100 (default 45)")
	}
	for _, cmd := range []*cobra.Command{importCmd, fixCmd} {
		cmd.Flags().IntVar(&shazamLevel, "thresh", -1, "Minimum recognition confidence to tag, 0-100 (default 50)")
	}
	for _, cmd := range []*cobra.Command{importCmd, fixCmd, junkizeCmd, untagCmd} {
		cmd.Flags().BoolVar(&promptEach, "prompt", false, "Ask for confirmation before each song")
	}
	for _, cmd := range []*cobra.Command{songsCmd, junksCmd} {
		cmd.Flags().BoolVar(&verbose, "verbose", false, "Show duration, cover art and match score per song")
	}
	playCmd.Flags().BoolVar(&shuffle, "shuffle", false, "Shuffle the selection once before playing")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(songsCmd)
	rootCmd.AddCommand(junksCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(junkizeCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(videosCmd)
	rootCmd.AddCommand(playCmd)
}

// commandContext is cancelled by Ctrl-C or SIGTERM so in-flight work
// can clean up its temporary files before the process exits.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
