package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
)

// ErrNameTaken is returned by Spawn when the requested name is already
// registered. A name is released when its actor terminates.
var ErrNameTaken = errors.New("name already taken")

// System is the root of the actor runtime. It owns the name directory
// and the lifecycle of every actor spawned through it.
type System struct {
	ctx         context.Context
	cancel      context.CancelFunc
	logger      log.Logger
	mu          sync.RWMutex
	actors      map[string]*PID
	mailboxSize int
}

// NewSystem creates an actor system bound to ctx. Cancelling ctx shuts
// every actor down.
func NewSystem(ctx context.Context, logger log.Logger, opts ...SystemOption) *System {
	ctx, cancel := context.WithCancel(ctx)
	s := &System{
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		actors:      make(map[string]*PID),
		mailboxSize: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SystemOption configures the actor system.
type SystemOption func(*System)

// WithMailboxSize sets the default mailbox size for spawned actors.
func WithMailboxSize(size int) SystemOption {
	return func(s *System) {
		s.mailboxSize = size
	}
}

// Spawn registers name, starts a goroutine running the actor's mailbox
// loop and delivers Started. It returns ErrNameTaken if the name is in
// use.
func (s *System) Spawn(name string, a Actor, opts ...SpawnOption) (*PID, error) {
	if name == "" {
		return nil, fmt.Errorf("spawn: empty actor name")
	}

	cfg := spawnConfig{
		mailboxSize: s.mailboxSize,
		supervisor:  DefaultSupervisor(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	p := &PID{
		name:       name,
		system:     s,
		actor:      a,
		mailbox:    make(chan Envelope, cfg.mailboxSize),
		ctx:        ctx,
		cancel:     cancel,
		logger:     s.logger.With("actor", name),
		supervisor: cfg.supervisor,
		metrics:    NewMetrics(name),
		started:    make(chan struct{}),
		done:       make(chan struct{}),
		links:      make(map[*PID]struct{}),
	}
	p.trapExits.Store(cfg.trapExits)

	s.mu.Lock()
	if _, exists := s.actors[name]; exists {
		s.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("spawn %s: %w", name, ErrNameTaken)
	}
	s.actors[name] = p
	s.mu.Unlock()

	for _, peer := range cfg.links {
		p.Link(peer)
	}

	go p.run()
	<-p.started

	if err := p.Tell(Started{}); err != nil {
		s.logger.Error("started message dropped", "actor", name, "error", err)
	}
	return p, nil
}

// Lookup returns the PID registered under name.
func (s *System) Lookup(name string) (*PID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.actors[name]
	return p, ok
}

// Names returns the currently registered actor names.
func (s *System) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.actors))
	for name := range s.actors {
		names = append(names, name)
	}
	return names
}

// unregister releases a name, guarding against a newer actor that
// reclaimed it in the meantime.
func (s *System) unregister(name string, p *PID) {
	s.mu.Lock()
	if s.actors[name] == p {
		delete(s.actors, name)
	}
	s.mu.Unlock()
}

// Shutdown stops all actors and cancels the system context. It returns
// an error when actors are still draining after timeout.
func (s *System) Shutdown(timeout time.Duration) error {
	s.mu.RLock()
	pids := make([]*PID, 0, len(s.actors))
	for _, p := range s.actors {
		pids = append(pids, p)
	}
	s.mu.RUnlock()

	var wg sync.WaitGroup
	for _, p := range pids {
		wg.Add(1)
		go func(p *PID) {
			defer wg.Done()
			p.Stop()
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("shutdown timed out after %v", timeout)
	}
}

type spawnConfig struct {
	mailboxSize int
	supervisor  Strategy
	trapExits   bool
	links       []*PID
}

// SpawnOption configures a single actor at spawn time.
type SpawnOption func(*spawnConfig)

// WithMailbox sets the mailbox size for this actor.
func WithMailbox(size int) SpawnOption {
	return func(c *spawnConfig) {
		c.mailboxSize = size
	}
}

// WithSupervisor sets the supervision strategy consulted when the
// actor panics.
func WithSupervisor(st Strategy) SpawnOption {
	return func(c *spawnConfig) {
		c.supervisor = st
	}
}

// WithTrapExits makes the actor receive ExitSignal messages from failed
// linked peers instead of being stopped with them.
func WithTrapExits() SpawnOption {
	return func(c *spawnConfig) {
		c.trapExits = true
	}
}

// WithLink links the new actor to peers as part of the spawn, before
// the first message is processed.
func WithLink(peers ...*PID) SpawnOption {
	return func(c *spawnConfig) {
		c.links = append(c.links, peers...)
	}
}
