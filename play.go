package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"atomicgo.dev/cursor"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/player"
)

var playCmd = &cobra.Command{
	Use:   "play [filter...] [index]",
	Short: "Play selected songs in the terminal.",
	Long: `Plays the selection through ffplay. Keys: space pauses and resumes,
left and right arrows move between tracks, tab opens the song's video
page, q or escape quits. The right arrow on the last track stops the
player; the left arrow on the first track restarts it.`,
	Args: cobra.ArbitraryArgs,
	Run:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) {
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

	// Positional arguments: a trailing integer is a song index, the
	// rest are filter keywords.
	indexArg := ""
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[len(args)-1]); err == nil {
			indexArg = args[len(args)-1]
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		filter = strings.Join(args, " ")
	}

	sel, scope, err := s.selectSongs(cat, false, indexArg)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	if len(sel.Songs) == 0 {
		colorWarning.Println("⚠️  No matching songs in", scope)
		return
	}
	if !player.CheckFFplay() {
		colorError.Println("❌ ffplay is required for playback but was not found on PATH")
		return
	}
	if !isTTY() {
		colorError.Println("❌ Playback requires an interactive terminal")
		return
	}

	colorInfo.Printf("🎧 Playing %d song(s) from %s\n", len(sel.Songs), scope)
	colorInfo.Println("⌨️  space: pause/resume | ←/→: previous/next | tab: open video | q: quit")

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		colorError.Printf("❌ Failed to switch terminal to raw mode: %v\n", err)
		return
	}
	cursor.Hide()
	var restoreOnce sync.Once
	restore := func() {
		restoreOnce.Do(func() {
			term.Restore(fd, oldState)
			cursor.Show()
		})
	}
	defer restore()

	var ctrl *player.Controller
	ctrl = player.New(sel.Songs, player.FFplay{}, player.Options{
		Shuffle: shuffle,
		OpenURL: openBrowser,
		Display: func(index, total int, song catalog.Song, status player.Status) {
			renderNowPlaying(ctrl, index, total, song, status)
		},
	})

	ctx, cancel := commandContext()
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		return player.ListenKeyboard(gctx, os.Stdin, ctrl.Events())
	})
	err = g.Wait()

	restore()
	fmt.Print("\r\n")
	if err != nil && !errors.Is(err, context.Canceled) {
		colorError.Printf("❌ Playback failed: %v\n", err)
		return
	}
	colorSuccess.Println("✅ Playback stopped")
}

func renderNowPlaying(ctrl *player.Controller, index, total int, song catalog.Song, status player.Status) {
	cursor.StartOfLine()
	cursor.ClearLine()
	icon := "▶️ "
	if status == player.StatusPaused {
		icon = "⏸ "
	}
	colorInfo.Printf("%s[%d/%d] %s", icon, index+1, total, TruncateString(song.DisplayName(), 60))
	if index+1 < total {
		fmt.Printf("  (next: %s)", TruncateString(ctrl.Songs()[index+1].DisplayName(), 40))
	}
}
