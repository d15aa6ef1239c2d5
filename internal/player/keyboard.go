package player

import (
	"context"
	"io"
)

// Key bytes the listener understands.
const (
	keyEscape    = 0x1b
	keyCtrlC     = 0x03
	keySpace     = ' '
	keyTab       = '\t'
	keyQuitLower = 'q'
	keyQuitUpper = 'Q'
)

// ListenKeyboard reads raw terminal input and translates keystrokes
// into controller events until a quit key, a read error, or context
// cancellation. The caller owns raw mode; this only consumes bytes.
// Reads happen on an inner goroutine because a blocked terminal read
// cannot be interrupted; cancellation abandons it.
func ListenKeyboard(ctx context.Context, input io.Reader, events chan<- Event) error {
	type chunk struct {
		data []byte
		err  error
	}
	reads := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, 8)
			n, err := input.Read(buf)
			select {
			case reads <- chunk{buf[:n], err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-reads:
			if c.err != nil {
				if c.err == io.EOF {
					return nil
				}
				return c.err
			}
			ev, quit := decodeKey(c.data)
			if quit {
				select {
				case events <- EventQuit:
				case <-ctx.Done():
				}
				return nil
			}
			if ev < 0 {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// decodeKey maps one read of raw input to an event. Arrow keys arrive
// as three-byte escape sequences; a lone escape byte means quit.
func decodeKey(b []byte) (ev Event, quit bool) {
	if len(b) == 0 {
		return -1, false
	}
	if b[0] == keyEscape {
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'C':
				return EventNext, false
			case 'D':
				return EventPrevious, false
			}
			return -1, false
		}
		return -1, true
	}
	switch b[0] {
	case keySpace:
		return EventPauseResume, false
	case keyTab:
		return EventOpenVideo, false
	case keyQuitLower, keyQuitUpper, keyCtrlC:
		return -1, true
	}
	return -1, false
}
