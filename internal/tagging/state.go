package tagging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pypl2mp3/internal/catalog"
)

// Recognition errors. ErrNoMatch means the service answered but found
// nothing; ErrServiceUnavailable covers outages and rate limiting. Both
// demote the song to junk instead of aborting the operation.
var (
	ErrNoMatch            = errors.New("recognition service found no match")
	ErrServiceUnavailable = errors.New("recognition service unavailable")
)

// Recognition is a successful identification result.
type Recognition struct {
	Artist      string
	Title       string
	Confidence  int // 0..100
	CoverArtURL string
}

// Recognizer identifies a song from its audio content.
type Recognizer interface {
	Recognize(ctx context.Context, mp3Path string) (*Recognition, error)
}

// DefaultConfidenceThreshold is the minimum confidence for a song to
// become tagged.
const DefaultConfidenceThreshold = 50

// Machine drives state transitions for song records. Every transition
// writes the new tag fields first and renames the file only once the
// write succeeded, so a failure never leaves a half-renamed record.
// Machines are not safe for concurrent use against the same song;
// commands run transitions sequentially.
type Machine struct {
	recognizer Recognizer
	threshold  int
	fetchCover func(ctx context.Context, url string) ([]byte, error)
	log        *log.Logger
}

// NewMachine builds a state machine with the given recognition
// collaborator and confidence threshold.
func NewMachine(recognizer Recognizer, threshold int, logger *log.Logger) *Machine {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultConfidenceThreshold
	}
	m := &Machine{
		recognizer: recognizer,
		threshold:  threshold,
		fetchCover: fetchCoverArt,
		log:        logger,
	}
	return m
}

// Outcome reports where a transition landed and why.
type Outcome struct {
	State      catalog.State
	Confidence int
	Reason     string
}

// Recognize runs the recognition cycle on a song: pending songs during
// import, junk songs via the fix operation. Confidence at or above the
// threshold tags the song with the recognized artist and title; anything
// else, including a downed service, demotes it to junk with the identity
// it already carries.
func (m *Machine) Recognize(ctx context.Context, song *catalog.Song) (Outcome, error) {
	rec, err := m.recognizer.Recognize(ctx, song.Path)
	switch {
	case errors.Is(err, ErrNoMatch):
		m.logf("no recognition match for %s", song.VideoID)
		return m.demote(song, 0, "no recognition match")
	case errors.Is(err, ErrServiceUnavailable):
		m.logf("recognition unavailable for %s: %v", song.VideoID, err)
		return m.demote(song, 0, "recognition service unavailable")
	case err != nil:
		return Outcome{}, fmt.Errorf("recognition failed for %s: %w", song.VideoID, err)
	}

	if rec.Confidence < m.threshold {
		m.logf("low confidence %d%% for %s", rec.Confidence, song.VideoID)
		return m.demote(song, rec.Confidence, fmt.Sprintf("confidence %d%% below threshold %d%%", rec.Confidence, m.threshold))
	}

	var cover []byte
	if rec.CoverArtURL != "" {
		if cover, err = m.fetchCover(ctx, rec.CoverArtURL); err != nil {
			m.logf("cover art fetch failed for %s: %v", song.VideoID, err)
			cover = nil
		}
	}

	next := *song
	next.Artist = catalog.SanitizeField(rec.Artist)
	next.Title = catalog.SanitizeField(rec.Title)
	next.State = catalog.StateTagged
	next.HasCoverArt = len(cover) > 0

	if err := m.commit(song, next, Tags{
		Artist:     next.Artist,
		Title:      next.Title,
		VideoID:    next.VideoID,
		MatchScore: rec.Confidence,
		Duration:   next.Duration,
		CoverArt:   cover,
	}); err != nil {
		return Outcome{}, err
	}
	return Outcome{State: catalog.StateTagged, Confidence: rec.Confidence}, nil
}

// demote moves a song to junk, keeping whatever identity it already has.
func (m *Machine) demote(song *catalog.Song, confidence int, reason string) (Outcome, error) {
	next := *song
	next.State = catalog.StateJunk
	if err := m.commit(song, next, Tags{
		Artist:     next.Artist,
		Title:      next.Title,
		VideoID:    next.VideoID,
		MatchScore: confidence,
		Duration:   next.Duration,
	}); err != nil {
		return Outcome{}, err
	}
	return Outcome{State: catalog.StateJunk, Confidence: confidence, Reason: reason}, nil
}

// Junkize demotes a tagged song on explicit request: tags and cover art
// are stripped and the file is renamed with the junk suffix. The artist
// and title stay encoded in the filename.
func (m *Machine) Junkize(song *catalog.Song) error {
	if err := StripTags(song.Path, song.VideoID, "", ""); err != nil {
		return err
	}
	next := *song
	next.State = catalog.StateJunk
	next.HasCoverArt = false
	return m.rename(song, next)
}

// Untag is the user-forced override: recognition metadata is dropped and
// the song's identity is reset to what its filename says, junk-suffixed.
// No confidence check applies.
func (m *Machine) Untag(song *catalog.Song) error {
	if err := StripTags(song.Path, song.VideoID, song.Artist, song.Title); err != nil {
		return err
	}
	next := *song
	next.State = catalog.StateJunk
	next.HasCoverArt = false
	return m.rename(song, next)
}

// commit writes tags, then renames. Step order is the atomicity
// contract: a failed tag write leaves both name and state untouched.
func (m *Machine) commit(song *catalog.Song, next catalog.Song, tags Tags) error {
	if err := WriteTags(song.Path, tags); err != nil {
		return err
	}
	return m.rename(song, next)
}

func (m *Machine) rename(song *catalog.Song, next catalog.Song) error {
	newPath := filepath.Join(filepath.Dir(song.Path), next.Filename())
	if newPath != song.Path {
		if err := os.Rename(song.Path, newPath); err != nil {
			return fmt.Errorf("failed to rename %s: %w", song.Path, err)
		}
	}
	next.Path = newPath
	*song = next
	return nil
}

func (m *Machine) logf(format string, args ...interface{}) {
	if m.log != nil {
		m.log.Printf(format, args...)
	}
}

// fetchCoverArt downloads cover art bytes. Failures are non-fatal; the
// song is simply tagged without a picture.
func fetchCoverArt(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s fetching cover art", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
