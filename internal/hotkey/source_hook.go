//go:build cgo

package hotkey

import (
	"context"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"keyrepeat/internal/keycatalog"
)

// hookSource is a Source backed by gohook.
type hookSource struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSource returns a Source backed by the platform global hook.
func NewSource() Source {
	return &hookSource{}
}

func (s *hookSource) Available() (bool, string) {
	return true, "global keyboard hook via libuiohook"
}

func (s *hookSource) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrSourceRunning
	}

	evs := hook.Start()
	out := make(chan Event, 16)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done, s.running = stop, done, true

	go func() {
		defer close(done)
		defer close(out)
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case ev, ok := <-evs:
				if !ok {
					return
				}
				e, ok := convert(ev)
				if !ok {
					continue
				}
				select {
				case out <- e:
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *hookSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stop)
	hook.End()
	<-s.done
	s.running = false
	return nil
}

// convert maps a gohook event to an Event. KeyHold is libuiohook's key
// pressed event; KeyDown is a typed character and is ignored.
func convert(ev hook.Event) (Event, bool) {
	var kind Kind
	switch ev.Kind {
	case hook.KeyHold:
		kind = Press
	case hook.KeyUp:
		kind = Release
	default:
		return Event{}, false
	}

	id, ok := keycatalog.FromRawcode(ev.Rawcode)
	if !ok && ev.Keychar != 0 && ev.Keychar != hook.CharUndefined {
		id, ok = keycatalog.FromChar(ev.Keychar)
	}
	if !ok {
		return Event{}, false
	}

	when := ev.When
	if when.IsZero() {
		when = time.Now()
	}
	return Event{Key: id, Kind: kind, Rawcode: ev.Rawcode, Time: when}, true
}
