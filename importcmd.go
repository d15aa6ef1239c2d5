package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/repolock"
	"pypl2mp3/internal/shazam"
	"pypl2mp3/internal/syncer"
	"pypl2mp3/internal/tagging"
	"pypl2mp3/internal/transcode"
	"pypl2mp3/internal/youtube"
)

var importCmd = &cobra.Command{
	Use:   "import [playlist]",
	Short: "Import new songs from a YouTube playlist.",
	Long: `Diffs the remote playlist against the repository and imports the
missing songs, one at a time: fetch the audio stream, encode to MP3,
recognize via Shazam, then name and tag the file. Songs already present
locally are never touched, whatever happened to them remotely.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		selector := ""
		if len(args) == 1 {
			selector = args[0]
		}
		runImport(selector)
	},
}

func runImport(selector string) {
	if !transcode.CheckFFmpeg() {
		colorError.Println("❌ ffmpeg is required for import but was not found on PATH")
		return
	}

	s, err := openSession()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	defer s.Close()

	if err := os.MkdirAll(s.cfg.RepoDir, 0755); err != nil {
		colorError.Printf("❌ Failed to create repository: %v\n", err)
		return
	}
	// A session opened before the repository existed logs to nowhere.
	if err := s.reopenLog(); err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}

	release, err := repolock.Acquire(s.cfg.RepoDir)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	defer release()

	cat, err := s.scan()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}

	if selector == "" {
		selector = s.cfg.DefaultPlaylist
	}
	if selector == "" {
		colorError.Println("❌ No playlist given and no default playlist configured")
		return
	}
	playlistID, err := cat.PlaylistID(selector)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}

	ctx, cancel := commandContext()
	defer cancel()

	client := youtube.New()
	colorInfo.Println("🔍 Fetching remote playlist", playlistID)
	info, err := client.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}

	playlistDir, local, err := ensurePlaylistDir(cat, info)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}

	plan := syncer.Plan(info.Tracks, local, filter, s.cfg.MatchThreshold)
	if len(plan) == 0 {
		colorSuccess.Println("✅ Playlist is up to date, nothing to import")
		return
	}
	colorInfo.Printf("🎵 %d new song(s) to import\n", len(plan))

	importer := &syncer.Importer{
		Source:     client,
		Transcoder: transcode.FFmpeg{Bitrate: s.cfg.Bitrate},
		Machine:    tagging.NewMachine(shazam.New(s.cfg.ShazamEndpoint, nil), s.cfg.ShazamThreshold, s.logger),
		Limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		Log:        s.logger,
	}

	var bar *pb.ProgressBar
	if isTTY() && !promptEach {
		bar = pb.StartNew(len(plan))
	}
	if promptEach {
		importer.Confirm = func(track youtube.Track) syncer.Answer {
			switch askConfirm(fmt.Sprintf("Import %q?", track.Title)) {
			case answerYes:
				return syncer.AnswerYes
			case answerNo:
				return syncer.AnswerSkip
			default:
				return syncer.AnswerAbort
			}
		}
	}
	importer.OnStart = func(index, total int, track youtube.Track) {
		if bar == nil {
			colorInfo.Printf("⬇️  [%d/%d] %s\n", index, total, TruncateString(track.Title, 70))
		}
	}
	importer.OnOutcome = func(track youtube.Track, song *catalog.Song, outcome tagging.Outcome, err error) {
		if bar != nil {
			bar.Increment()
			return
		}
		switch {
		case err != nil:
			colorError.Printf("❌ %s: %v\n", TruncateString(track.Title, 60), err)
		case outcome.State == catalog.StateJunk:
			colorWarning.Printf("🗑  %s (%s)\n", song.DisplayName(), outcome.Reason)
		default:
			colorSuccess.Printf("✅ %s (match %d%%)\n", song.DisplayName(), outcome.Confidence)
		}
	}

	report, err := importer.Run(ctx, plan, playlistDir)
	if bar != nil {
		bar.Finish()
	}
	printImportReport(report)
	switch {
	case errors.Is(err, syncer.ErrAborted):
		colorWarning.Println("⚠️  Import aborted; songs imported so far are kept")
	case err != nil:
		colorError.Printf("❌ Import stopped: %v\n", err)
	default:
		colorSuccess.Println("✅ Import completed")
	}
}

// ensurePlaylistDir finds the local playlist directory for a remote
// listing, creating "<title> [<id>]" on a first-time import.
func ensurePlaylistDir(cat *catalog.Catalog, info *youtube.PlaylistInfo) (string, []catalog.Song, error) {
	for _, pl := range cat.Playlists {
		if pl.ID == info.ID {
			return pl.Dir, pl.Songs, nil
		}
	}
	name := catalog.SanitizeField(info.Title)
	if name == "" {
		name = "Playlist"
	}
	dir := filepath.Join(cat.Root, fmt.Sprintf("%s [%s]", name, info.ID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create playlist directory: %w", err)
	}
	colorInfo.Println("📁 Created playlist directory", dir)
	return dir, nil, nil
}

func printImportReport(report *syncer.Report) {
	if report.Total() == 0 {
		return
	}
	colorInfo.Printf("\n📋 Import report: %d tagged, %d junk, %d skipped, %d failed\n",
		len(report.Tagged), len(report.Junk), len(report.Skipped), len(report.Failed))
	for _, e := range report.Tagged {
		colorSuccess.Printf("  ✅ %s (%s)\n", e.Name, e.Detail)
	}
	for _, e := range report.Junk {
		colorWarning.Printf("  🗑  %s (%s)\n", e.Name, e.Detail)
	}
	for _, e := range report.Skipped {
		colorInfo.Printf("  ⏭  %s\n", e.Name)
	}
	for _, e := range report.Failed {
		colorError.Printf("  ❌ %s: %s\n", e.Name, e.Detail)
	}
}
