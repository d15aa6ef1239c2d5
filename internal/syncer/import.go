package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/tagging"
	"pypl2mp3/internal/youtube"
)

// AudioSource is the remote side of an import: playlist listing, audio
// streams and thumbnails.
type AudioSource interface {
	ListPlaylistTracks(ctx context.Context, playlistID string) (*youtube.PlaylistInfo, error)
	FetchAudio(ctx context.Context, videoID, destDir string) (string, error)
	FetchThumbnail(ctx context.Context, videoID string) ([]byte, error)
}

// Transcoder turns a raw audio stream into an MP3 and reports its
// duration in seconds.
type Transcoder interface {
	ToMP3(ctx context.Context, inputFile, outputFile string) (int, error)
}

// Answer is a per-track confirmation result.
type Answer int

const (
	AnswerYes Answer = iota
	AnswerSkip
	AnswerAbort
)

// ErrAborted stops the batch when the user answers abort; everything
// imported so far stays imported.
var ErrAborted = errors.New("import aborted")

// Importer runs the one-track-at-a-time import pipeline. Tracks are
// processed strictly sequentially as backpressure against the remote
// services; the limiter paces the start of each track on top of that.
type Importer struct {
	Source     AudioSource
	Transcoder Transcoder
	Machine    *tagging.Machine
	Limiter    *rate.Limiter
	Log        *log.Logger

	// Confirm, when set, is asked before each track. OnStart and
	// OnOutcome drive per-track console display.
	Confirm   func(track youtube.Track) Answer
	OnStart   func(index, total int, track youtube.Track)
	OnOutcome func(track youtube.Track, song *catalog.Song, outcome tagging.Outcome, err error)
}

// Run imports every planned track and collects the batch report.
// Per-track failures are recorded and never abort sibling tracks; only
// context cancellation or an explicit abort answer stops the loop.
func (imp *Importer) Run(ctx context.Context, plan []youtube.Track, playlistDir string) (*Report, error) {
	report := &Report{}

	for i, track := range plan {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if imp.OnStart != nil {
			imp.OnStart(i+1, len(plan), track)
		}
		if imp.Confirm != nil {
			switch imp.Confirm(track) {
			case AnswerSkip:
				report.Skipped = append(report.Skipped, Entry{VideoID: track.VideoID, Name: track.Title})
				continue
			case AnswerAbort:
				return report, ErrAborted
			}
		}

		song, outcome, err := imp.importTrack(ctx, track, playlistDir)
		if imp.OnOutcome != nil {
			imp.OnOutcome(track, song, outcome, err)
		}
		switch {
		case err != nil && ctx.Err() != nil:
			return report, ctx.Err()
		case err != nil:
			imp.logf("import of %s failed: %v", track.VideoID, err)
			report.Failed = append(report.Failed, Entry{VideoID: track.VideoID, Name: track.Title, Detail: err.Error()})
		case outcome.State == catalog.StateJunk:
			report.Junk = append(report.Junk, Entry{
				VideoID: track.VideoID,
				Name:    song.DisplayName(),
				Detail:  outcome.Reason,
			})
		default:
			report.Tagged = append(report.Tagged, Entry{
				VideoID: track.VideoID,
				Name:    song.DisplayName(),
				Detail:  fmt.Sprintf("match score %d%%", outcome.Confidence),
			})
		}
	}
	return report, nil
}

// importTrack runs the fetch, transcode, tag, recognize, rename cycle
// for one track. The MP3 lives under a dotted temporary name inside the
// playlist directory until the state machine promotes it by rename;
// cancellation or failure removes the temporary, so a half-imported
// track is never visible under a catalog name.
func (imp *Importer) importTrack(ctx context.Context, track youtube.Track, playlistDir string) (*catalog.Song, tagging.Outcome, error) {
	if imp.Limiter != nil {
		if err := imp.Limiter.Wait(ctx); err != nil {
			return nil, tagging.Outcome{}, err
		}
	}

	streamDir, err := os.MkdirTemp("", "pypl2mp3-stream-")
	if err != nil {
		return nil, tagging.Outcome{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(streamDir)

	rawPath, err := imp.Source.FetchAudio(ctx, track.VideoID, streamDir)
	if err != nil {
		return nil, tagging.Outcome{}, err
	}

	tempPath := filepath.Join(playlistDir, "."+track.VideoID+".import.mp3")
	duration, err := imp.Transcoder.ToMP3(ctx, rawPath, tempPath)
	if err != nil {
		os.Remove(tempPath)
		return nil, tagging.Outcome{}, err
	}

	cover, err := imp.Source.FetchThumbnail(ctx, track.VideoID)
	if err != nil {
		imp.logf("thumbnail fetch failed for %s: %v", track.VideoID, err)
		cover = nil
	}

	song := &catalog.Song{
		VideoID:     track.VideoID,
		Artist:      catalog.SanitizeField(track.Author),
		Title:       catalog.SanitizeField(track.Title),
		State:       catalog.StatePending,
		Path:        tempPath,
		Duration:    duration,
		HasCoverArt: len(cover) > 0,
	}
	if err := tagging.WriteTags(tempPath, tagging.Tags{
		Artist:     song.Artist,
		Title:      song.Title,
		VideoID:    song.VideoID,
		MatchScore: -1,
		Duration:   duration,
		CoverArt:   cover,
	}); err != nil {
		os.Remove(tempPath)
		return nil, tagging.Outcome{}, err
	}

	outcome, err := imp.Machine.Recognize(ctx, song)
	if err != nil {
		os.Remove(tempPath)
		return nil, tagging.Outcome{}, err
	}
	return song, outcome, nil
}

func (imp *Importer) logf(format string, args ...interface{}) {
	if imp.Log != nil {
		imp.Log.Printf(format, args...)
	}
}
