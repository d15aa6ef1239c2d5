package player

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"pypl2mp3/internal/catalog"
)

type fakeHandle struct {
	done chan error

	mu      sync.Mutex
	paused  int
	resumed int
	stopped bool
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused++
	return nil
}

func (h *fakeHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resumed++
	return nil
}

func (h *fakeHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	return nil
}

func (h *fakeHandle) Done() <-chan error {
	return h.done
}

// fakeBackend records played paths. In auto mode every track completes
// immediately, as if it reached end of stream.
type fakeBackend struct {
	auto bool

	mu      sync.Mutex
	plays   []string
	handles []*fakeHandle
	started chan string
}

func (b *fakeBackend) Play(ctx context.Context, path string) (Handle, error) {
	h := &fakeHandle{done: make(chan error, 1)}
	if b.auto {
		h.done <- nil
	}
	b.mu.Lock()
	b.plays = append(b.plays, path)
	b.handles = append(b.handles, h)
	b.mu.Unlock()
	if b.started != nil {
		b.started <- path
	}
	return h, nil
}

func (b *fakeBackend) played() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.plays...)
}

func testSongs(n int) []catalog.Song {
	songs := make([]catalog.Song, n)
	for i := range songs {
		songs[i] = catalog.Song{
			VideoID: string(rune('a' + i)),
			Title:   "Song " + string(rune('A'+i)),
			State:   catalog.StateTagged,
			Path:    "/songs/" + string(rune('a'+i)) + ".mp3",
		}
	}
	return songs
}

func TestNextThroughLastTrackStops(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := New(testSongs(5), backend, Options{})
	for i := 0; i < 5; i++ {
		ctrl.Events() <- EventNext
	}

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(backend.played()); got != 5 {
		t.Errorf("played %d tracks, want 5 (no wrap-around)", got)
	}
	if ctrl.Status() != StatusStopped {
		t.Errorf("status = %v, want stopped", ctrl.Status())
	}
}

func TestAutoAdvance(t *testing.T) {
	backend := &fakeBackend{auto: true}
	ctrl := New(testSongs(3), backend, Options{})
	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	plays := backend.played()
	if len(plays) != 3 {
		t.Fatalf("played %d tracks, want 3", len(plays))
	}
	for i, song := range ctrl.Songs() {
		if plays[i] != song.Path {
			t.Errorf("plays[%d] = %s, want %s", i, plays[i], song.Path)
		}
	}
	if ctrl.Status() != StatusStopped {
		t.Errorf("status = %v, want stopped after the last track", ctrl.Status())
	}
}

func TestPreviousOnFirstTrackRestarts(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := New(testSongs(3), backend, Options{})
	ctrl.Events() <- EventPrevious
	ctrl.Events() <- EventQuit

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	plays := backend.played()
	if len(plays) != 2 || plays[0] != plays[1] {
		t.Errorf("plays = %v, want the first track twice", plays)
	}
	if ctrl.Index() != 0 {
		t.Errorf("index = %d, want 0", ctrl.Index())
	}
}

func TestPauseResume(t *testing.T) {
	var statuses []Status
	backend := &fakeBackend{}
	ctrl := New(testSongs(1), backend, Options{
		Display: func(index, total int, song catalog.Song, status Status) {
			statuses = append(statuses, status)
		},
	})
	ctrl.Events() <- EventPauseResume
	ctrl.Events() <- EventPauseResume
	ctrl.Events() <- EventQuit

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	h := backend.handles[0]
	if h.paused != 1 || h.resumed != 1 {
		t.Errorf("paused=%d resumed=%d, want 1/1", h.paused, h.resumed)
	}
	sawPaused := false
	for _, s := range statuses {
		if s == StatusPaused {
			sawPaused = true
		}
	}
	if !sawPaused {
		t.Error("paused status was never displayed")
	}
}

func TestQuitWhilePaused(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := New(testSongs(2), backend, Options{})
	ctrl.Events() <- EventPauseResume
	ctrl.Events() <- EventQuit

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ctrl.Status() != StatusStopped {
		t.Errorf("status = %v, want stopped", ctrl.Status())
	}
	if !backend.handles[0].stopped {
		t.Error("quit did not stop the in-flight track")
	}
}

func TestOpenVideoKeepsPlaying(t *testing.T) {
	opened := make(chan string, 1)
	backend := &fakeBackend{}
	ctrl := New(testSongs(1), backend, Options{
		OpenURL: func(url string) error {
			opened <- url
			return nil
		},
	})
	ctrl.Events() <- EventOpenVideo
	ctrl.Events() <- EventQuit

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	select {
	case url := <-opened:
		if url != ctrl.Songs()[0].WatchURL() {
			t.Errorf("opened %s", url)
		}
	default:
		t.Error("video page was not opened")
	}
	if len(backend.played()) != 1 {
		t.Errorf("opening the video changed playback: %v", backend.played())
	}
}

func TestShuffleIsAPermutation(t *testing.T) {
	songs := testSongs(10)
	shuffled := false
	for seed := int64(1); seed <= 10; seed++ {
		ctrl := New(songs, &fakeBackend{}, Options{
			Shuffle: true,
			Rand:    rand.New(rand.NewSource(seed)),
		})
		order := ctrl.Songs()
		if len(order) != len(songs) {
			t.Fatalf("shuffle changed length: %d", len(order))
		}
		seen := make(map[string]int)
		for _, s := range order {
			seen[s.VideoID]++
		}
		for _, s := range songs {
			if seen[s.VideoID] != 1 {
				t.Fatalf("shuffle lost or duplicated %s", s.VideoID)
			}
		}
		for i := range order {
			if order[i].VideoID != songs[i].VideoID {
				shuffled = true
				break
			}
		}
	}
	if !shuffled {
		t.Error("no seed produced a shuffled order")
	}
}

func TestEmptySelection(t *testing.T) {
	ctrl := New(nil, &fakeBackend{}, Options{})
	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ctrl.Status() != StatusStopped {
		t.Errorf("status = %v, want stopped", ctrl.Status())
	}
}

func TestCancellationStopsPlayback(t *testing.T) {
	backend := &fakeBackend{started: make(chan string, 1)}
	ctrl := New(testSongs(3), backend, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- ctrl.Run(ctx) }()

	<-backend.started
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if !backend.handles[0].stopped {
		t.Error("cancellation did not stop the in-flight track")
	}
}

func TestDecodeKey(t *testing.T) {
	cases := []struct {
		in   []byte
		ev   Event
		quit bool
	}{
		{[]byte{0x1b, '[', 'C'}, EventNext, false},
		{[]byte{0x1b, '[', 'D'}, EventPrevious, false},
		{[]byte{' '}, EventPauseResume, false},
		{[]byte{'\t'}, EventOpenVideo, false},
		{[]byte{'q'}, -1, true},
		{[]byte{'Q'}, -1, true},
		{[]byte{0x03}, -1, true},
		{[]byte{0x1b}, -1, true},
		{[]byte{0x1b, '[', 'A'}, -1, false},
		{[]byte{'x'}, -1, false},
		{nil, -1, false},
	}
	for _, c := range cases {
		ev, quit := decodeKey(c.in)
		if ev != c.ev || quit != c.quit {
			t.Errorf("decodeKey(%v) = %v/%v, want %v/%v", c.in, ev, quit, c.ev, c.quit)
		}
	}
}
