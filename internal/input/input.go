// Package input turns raw terminal bytes into key-down and key-up events.
//
// Terminals only report key presses (plus auto-repeat), never releases, so
// held keys are tracked with a timestamp and released once no press has
// been seen for the hold window.
package input

import (
	"io"
	"time"
)

// DefaultHoldDuration is how long a movement key counts as held after its
// last press. It has to bridge the gap between terminal auto-repeats.
const DefaultHoldDuration = 120 * time.Millisecond

// Key is a physical key the game reacts to.
type Key uint8

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeySpace
	KeyEnter
	KeyEscape
	KeyPause
	KeyRestart
	KeyMute
	KeyDelete
	KeyQuit
	keyCount
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeySpace:
		return "space"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyPause:
		return "pause"
	case KeyRestart:
		return "restart"
	case KeyMute:
		return "mute"
	case KeyDelete:
		return "delete"
	case KeyQuit:
		return "quit"
	}
	return "unknown"
}

// held reports whether the key is tracked as continuously held. Every other
// key produces an immediate down/up pair per press.
func (k Key) held() bool {
	return k == KeyLeft || k == KeyRight
}

// Event is one key edge.
type Event struct {
	Key  Key
	Down bool
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch chan byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The channel is closed when r returns an error (including io.EOF).
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				s.ch <- b
			}
			if err != nil {
				close(s.ch)
				return
			}
		}
	}()
	return s
}

// Drain returns every byte available right now without blocking.
// open is false once the underlying reader has failed and all bytes were read.
func (s *Stream) Drain() (buf []byte, open bool) {
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				return buf, false
			}
			buf = append(buf, b)
		default:
			return buf, true
		}
	}
}

// Parse decodes raw bytes into key presses. Arrow keys and Delete arrive as
// CSI sequences; a lone ESC is the escape key.
func Parse(buf []byte) []Key {
	var keys []Key
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				keys = append(keys, KeyUp)
				i += 2
				continue
			case 'B':
				keys = append(keys, KeyDown)
				i += 2
				continue
			case 'C':
				keys = append(keys, KeyRight)
				i += 2
				continue
			case 'D':
				keys = append(keys, KeyLeft)
				i += 2
				continue
			case '3':
				if i+3 < len(buf) && buf[i+3] == '~' {
					keys = append(keys, KeyDelete)
					i += 3
					continue
				}
			}
		}
		if k, ok := byteKey(b); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func byteKey(b byte) (Key, bool) {
	switch b {
	case 'q', 'Q', '\x03':
		return KeyQuit, true
	case 'a', 'A', 'h', 'H':
		return KeyLeft, true
	case 'd', 'D', 'l', 'L':
		return KeyRight, true
	case '+', '=':
		return KeyUp, true
	case '-', '_':
		return KeyDown, true
	case ' ':
		return KeySpace, true
	case '\n', '\r':
		return KeyEnter, true
	case 'p', 'P':
		return KeyPause, true
	case 'r', 'R':
		return KeyRestart, true
	case 'm', 'M':
		return KeyMute, true
	case '\x7f', '\b':
		return KeyDelete, true
	case '\x1b':
		return KeyEscape, true
	}
	return 0, false
}

// Tracker derives key edges from presses.
type Tracker struct {
	hold time.Duration
	last [keyCount]time.Time
	down [keyCount]bool
}

// NewTracker returns a tracker releasing held keys after hold.
func NewTracker(hold time.Duration) *Tracker {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &Tracker{hold: hold}
}

// Events parses buf, observed at now, into key edges. Held keys emit a down
// edge on the first press and an up edge once the hold window lapses.
func (t *Tracker) Events(buf []byte, now time.Time) []Event {
	var events []Event
	for _, k := range Parse(buf) {
		if !k.held() {
			events = append(events, Event{Key: k, Down: true}, Event{Key: k, Down: false})
			continue
		}
		// Opposite directions cancel each other out immediately.
		if other := opposite(k); t.down[other] {
			t.down[other] = false
			events = append(events, Event{Key: other, Down: false})
		}
		t.last[k] = now
		if !t.down[k] {
			t.down[k] = true
			events = append(events, Event{Key: k, Down: true})
		}
	}

	for k := Key(0); k < keyCount; k++ {
		if t.down[k] && now.Sub(t.last[k]) >= t.hold {
			t.down[k] = false
			events = append(events, Event{Key: k, Down: false})
		}
	}
	return events
}

// Release emits up edges for every held key, e.g. when the window loses focus.
func (t *Tracker) Release() []Event {
	var events []Event
	for k := Key(0); k < keyCount; k++ {
		if t.down[k] {
			t.down[k] = false
			events = append(events, Event{Key: k, Down: false})
		}
	}
	return events
}

// Held reports whether k is currently held down.
func (t *Tracker) Held(k Key) bool {
	return k < keyCount && t.down[k]
}

func opposite(k Key) Key {
	if k == KeyLeft {
		return KeyRight
	}
	return KeyLeft
}
