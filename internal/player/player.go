// Package player is the terminal playback engine. One controller loop
// consumes a single event queue fed by the keyboard listener and the
// audio backend's completion signal; because only the loop ever touches
// player state, transitions need no locks.
package player

import (
	"context"
	"math/rand"

	"pypl2mp3/internal/catalog"
)

// Event is a transport command for the controller loop.
type Event int

const (
	EventPrevious Event = iota
	EventNext
	EventPauseResume
	EventOpenVideo
	EventQuit
)

// Status is the controller's transport state.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

// Handle controls one in-flight track.
type Handle interface {
	Pause() error
	Resume() error
	Stop() error
	// Done fires once when playback ends, naturally or by Stop.
	Done() <-chan error
}

// Backend starts playback of a single file.
type Backend interface {
	Play(ctx context.Context, path string) (Handle, error)
}

// Options configure a controller run.
type Options struct {
	// Shuffle permutes the selection once at start; previous/next then
	// walk the fixed permuted order.
	Shuffle    bool
	StartIndex int
	// OpenURL launches the song's video page; a side effect that never
	// changes playback state.
	OpenURL func(url string) error
	// Display redraws the now-playing line on every transition.
	Display func(index, total int, song catalog.Song, status Status)
	// Rand seeds the shuffle; nil uses the global source.
	Rand *rand.Rand
}

// Controller walks an ordered selection of songs.
type Controller struct {
	songs   []catalog.Song
	backend Backend
	events  chan Event
	opts    Options

	index  int
	status Status
}

// New builds a controller over the selection. The selection order is
// frozen here: shuffling happens once, never per skip.
func New(songs []catalog.Song, backend Backend, opts Options) *Controller {
	order := make([]catalog.Song, len(songs))
	copy(order, songs)
	if opts.Shuffle {
		shuffler := rand.Intn
		if opts.Rand != nil {
			shuffler = opts.Rand.Intn
		}
		for i := len(order) - 1; i > 0; i-- {
			j := shuffler(i + 1)
			order[i], order[j] = order[j], order[i]
		}
	}
	if opts.StartIndex < 0 || opts.StartIndex >= len(order) {
		opts.StartIndex = 0
	}
	return &Controller{
		songs:   order,
		backend: backend,
		events:  make(chan Event, 16),
		opts:    opts,
		index:   opts.StartIndex,
	}
}

// Events is the queue both producers feed. Sending is safe at any time,
// including mid-transition; the loop serializes everything.
func (c *Controller) Events() chan<- Event {
	return c.events
}

// Status reports the transport state after Run returns.
func (c *Controller) Status() Status {
	return c.status
}

// Index reports the current position in the (possibly shuffled) order.
func (c *Controller) Index() int {
	return c.index
}

// Songs exposes the frozen playback order.
func (c *Controller) Songs() []catalog.Song {
	return c.songs
}

// Run plays the selection until quit, cancellation, or the end of the
// last track. "next" past the last track and natural completion of the
// last track both stop the player: the order never wraps. "previous" on
// the first track restarts it.
func (c *Controller) Run(ctx context.Context) error {
	if len(c.songs) == 0 {
		c.status = StatusStopped
		return nil
	}

	for {
		song := c.songs[c.index]
		handle, err := c.backend.Play(ctx, song.Path)
		if err != nil {
			c.status = StatusStopped
			return err
		}
		c.status = StatusPlaying
		c.display(song)

		next, err := c.consume(ctx, song, handle)
		if err != nil || next < 0 {
			c.status = StatusStopped
			return err
		}
		c.index = next
	}
}

// consume handles events for one track and returns the next index, or
// -1 to stop.
func (c *Controller) consume(ctx context.Context, song catalog.Song, handle Handle) (int, error) {
	for {
		select {
		case <-ctx.Done():
			handle.Stop()
			return -1, ctx.Err()

		case <-handle.Done():
			if c.index == len(c.songs)-1 {
				return -1, nil
			}
			return c.index + 1, nil

		case ev := <-c.events:
			switch ev {
			case EventQuit:
				handle.Stop()
				return -1, nil

			case EventPauseResume:
				if c.status == StatusPlaying {
					handle.Pause()
					c.status = StatusPaused
				} else {
					handle.Resume()
					c.status = StatusPlaying
				}
				c.display(song)

			case EventOpenVideo:
				if c.opts.OpenURL != nil {
					c.opts.OpenURL(song.WatchURL())
				}

			case EventNext:
				handle.Stop()
				if c.index == len(c.songs)-1 {
					return -1, nil
				}
				return c.index + 1, nil

			case EventPrevious:
				handle.Stop()
				if c.index == 0 {
					return 0, nil
				}
				return c.index - 1, nil
			}
		}
	}
}

func (c *Controller) display(song catalog.Song) {
	if c.opts.Display != nil {
		c.opts.Display(c.index, len(c.songs), song, c.status)
	}
}
