package hotkey

import (
	"context"
	"sync"
	"time"

	"keyrepeat/internal/keycatalog"
)

// Simulator hands out simulated sources and delivers key events to whichever
// one is currently started. It records how many sources were active at once.
type Simulator struct {
	mu        sync.Mutex
	active    map[*SimulatedSource]struct{}
	maxActive int
	installs  int
}

// NewSimulator creates a simulator with no active source.
func NewSimulator() *Simulator {
	return &Simulator{active: make(map[*SimulatedSource]struct{})}
}

// NewSource returns a new simulated source. It has the signature expected by
// New.
func (s *Simulator) NewSource() Source {
	return &SimulatedSource{sim: s}
}

// Press delivers a press and a release of id to every active source and
// reports how many received it.
func (s *Simulator) Press(id keycatalog.ID) int {
	s.Send(Event{Key: id, Kind: Press})
	return s.Send(Event{Key: id, Kind: Release})
}

// Send delivers e to every active source and reports how many received it.
func (s *Simulator) Send(e Event) int {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for src := range s.active {
		src.out <- e
	}
	return len(s.active)
}

// Active returns the number of started sources.
func (s *Simulator) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// MaxActive returns the highest number of simultaneously started sources.
func (s *Simulator) MaxActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxActive
}

// Installs returns how many times a source was started.
func (s *Simulator) Installs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installs
}

// SimulatedSource is a Source fed by a Simulator.
type SimulatedSource struct {
	sim     *Simulator
	out     chan Event
	stop    chan struct{}
	running bool
}

// Start registers the source with its simulator.
func (src *SimulatedSource) Start(ctx context.Context) (<-chan Event, error) {
	s := src.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	if src.running {
		return nil, ErrSourceRunning
	}
	src.out = make(chan Event, 64)
	src.stop = make(chan struct{})
	src.running = true
	s.active[src] = struct{}{}
	s.installs++
	if len(s.active) > s.maxActive {
		s.maxActive = len(s.active)
	}

	stop := src.stop
	go func() {
		select {
		case <-ctx.Done():
			src.Stop()
		case <-stop:
		}
	}()
	return src.out, nil
}

// Stop unregisters the source and closes its channel.
func (src *SimulatedSource) Stop() error {
	s := src.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	if !src.running {
		return nil
	}
	src.running = false
	delete(s.active, src)
	close(src.stop)
	close(src.out)
	return nil
}

// Available is always true.
func (src *SimulatedSource) Available() (bool, string) {
	return true, "simulated keyboard hook"
}
