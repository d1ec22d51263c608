package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
)

var (
	// ErrNotRunning is returned when sending to a terminated actor.
	ErrNotRunning = errors.New("actor not running")

	// ErrMailboxFull is returned when the target mailbox is full.
	// Messages are never queued outside the mailbox.
	ErrMailboxFull = errors.New("mailbox full")

	// ErrTimeout is returned by Request when no reply arrives in time.
	ErrTimeout = errors.New("request timed out")
)

// stopWait bounds how long Stop waits for the actor to drain.
const stopWait = 5 * time.Second

// Envelope pairs a message with its sender and enqueue time.
type Envelope struct {
	Message   any
	Sender    *PID
	Timestamp time.Time
}

// PID is the handle to a running actor. All interaction with an actor
// goes through its PID; the actor struct itself is owned by the run
// loop goroutine.
type PID struct {
	name       string
	system     *System
	actor      Actor
	mailbox    chan Envelope
	ctx        context.Context
	cancel     context.CancelFunc
	logger     log.Logger
	supervisor Strategy
	metrics    *Metrics

	running   atomic.Bool
	trapExits atomic.Bool
	restarts  atomic.Int32
	started   chan struct{}
	done      chan struct{}
	terminate sync.Once
	reason    string // valid once done is closed

	peerMu   sync.Mutex
	finished bool // guarded by peerMu; set in finish
	links    map[*PID]struct{}
	watchers []*PID
}

// Tell sends a fire-and-forget message to the actor.
func (p *PID) Tell(msg any) error {
	return p.tell(msg, nil)
}

// Send sends a message carrying an explicit sender reference.
func (p *PID) Send(msg any, sender *PID) error {
	return p.tell(msg, sender)
}

func (p *PID) tell(msg any, sender *PID) error {
	if !p.running.Load() {
		switch msg.(type) {
		case Started, Stopping, exit:
			// lifecycle messages may race the run loop start
		default:
			return fmt.Errorf("%s: %w", p.name, ErrNotRunning)
		}
	}

	if v, ok := msg.(Validatable); ok {
		if err := v.Validate(); err != nil {
			p.metrics.Invalid.Add(1)
			return fmt.Errorf("message for %s rejected: %w", p.name, err)
		}
	}

	select {
	case p.mailbox <- Envelope{Message: msg, Sender: sender, Timestamp: time.Now()}:
		p.metrics.Sent.Add(1)
		return nil
	default:
		p.metrics.Dropped.Add(1)
		return fmt.Errorf("%s: %w", p.name, ErrMailboxFull)
	}
}

// Request sends msg and waits for the reply the actor produces via
// Context.Respond. A reply that is an error is returned as the error.
func (p *PID) Request(msg any, timeout time.Duration) (any, error) {
	reply := make(chan any, 1)
	if err := p.Tell(&Request{Message: msg, Reply: reply}); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		if err, ok := resp.(error); ok {
			return nil, err
		}
		return resp, nil
	case <-timer.C:
		p.metrics.Timeouts.Add(1)
		return nil, fmt.Errorf("request to %s after %v: %w", p.name, timeout, ErrTimeout)
	}
}

// Stop asks the actor to terminate and waits for it to finish. Calling
// Stop from inside the actor's own Receive deadlocks until the stop
// timeout; an actor stops itself by sending Stopping to its own PID
// instead.
func (p *PID) Stop() {
	if !p.running.Load() {
		return
	}
	if err := p.tell(Stopping{}, nil); err != nil {
		p.cancel()
	}
	select {
	case <-p.done:
	case <-time.After(stopWait):
		p.cancel()
		select {
		case <-p.done:
		case <-time.After(100 * time.Millisecond):
			p.logger.Error("actor did not stop", "actor", p.name)
		}
	}
}

// Name returns the registered name of the actor.
func (p *PID) Name() string {
	return p.name
}

// IsRunning reports whether the actor is still processing messages.
func (p *PID) IsRunning() bool {
	return p.running.Load()
}

// Metrics returns the actor's counters.
func (p *PID) Metrics() *Metrics {
	return p.metrics
}

// Restarts returns how many times the supervisor restarted the actor.
func (p *PID) Restarts() int32 {
	return p.restarts.Load()
}

// Monitor registers watcher to receive a Down message when p
// terminates. Monitoring an already-terminated actor delivers the Down
// immediately.
func (p *PID) Monitor(watcher *PID) {
	p.peerMu.Lock()
	if p.finished {
		reason := p.reason
		p.peerMu.Unlock()
		p.notifyWatcher(watcher, reason)
		return
	}
	p.watchers = append(p.watchers, watcher)
	p.peerMu.Unlock()
}

// Link creates a bidirectional link between p and other. When either
// side terminates abnormally the peer is stopped with the same reason,
// unless the peer traps exits, in which case it receives an ExitSignal
// message and keeps running. Linking to an already-failed actor
// delivers the exit right away.
func (p *PID) Link(other *PID) {
	if !p.addLink(other) {
		p.exitInto(other)
		return
	}
	if !other.addLink(p) {
		p.dropLink(other)
		other.exitInto(p)
		return
	}
}

// addLink records other as a link peer; it reports false when p has
// already terminated.
func (p *PID) addLink(other *PID) bool {
	p.peerMu.Lock()
	defer p.peerMu.Unlock()
	if p.finished {
		return false
	}
	p.links[other] = struct{}{}
	return true
}

// exitInto delivers p's abnormal termination to other, as if the link
// had existed when p died.
func (p *PID) exitInto(other *PID) {
	if p.reason != ReasonNormal && p.reason != ReasonShutdown {
		other.exitFrom(p, p.reason)
	}
}

// Unlink removes the link between p and other in both directions.
func (p *PID) Unlink(other *PID) {
	p.dropLink(other)
	other.dropLink(p)
}

func (p *PID) dropLink(other *PID) {
	p.peerMu.Lock()
	delete(p.links, other)
	p.peerMu.Unlock()
}

// run is the actor's goroutine: read the mailbox, dispatch, terminate.
func (p *PID) run() {
	defer func() {
		if r := recover(); r != nil {
			// a panic that escaped message dispatch
			p.metrics.Panics.Add(1)
			p.finish(fmt.Sprintf("panic: %v", r))
		}
	}()

	p.running.Store(true)
	close(p.started)

	ctx := &actorContext{self: p, system: p.system, logger: p.logger}

	for {
		select {
		case env := <-p.mailbox:
			if p.handle(ctx, env) {
				return
			}
		case <-p.ctx.Done():
			p.finish(ReasonShutdown)
			return
		}
	}
}

// handle dispatches one envelope. It reports true when the actor must
// terminate, leaving the run loop.
func (p *PID) handle(ctx *actorContext, env Envelope) bool {
	ctx.sender = env.Sender
	ctx.message = env.Message
	p.metrics.Received.Add(1)

	switch m := env.Message.(type) {
	case exit:
		p.finish(m.reason)
		return true

	case Stopping:
		p.safeReceive(ctx, m)
		p.finish(ReasonNormal)
		return true

	case *Request:
		p.answer(ctx, m)
		return false

	default:
		if cause := p.safeReceive(ctx, env.Message); cause != nil {
			return p.handleFailure(ctx, cause)
		}
		return false
	}
}

// safeReceive invokes the actor and converts a panic into a value.
func (p *PID) safeReceive(ctx *actorContext, msg any) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	p.actor.Receive(ctx, msg)
	return nil
}

// answer dispatches a request. A panicking handler answers the caller
// with the panic as an error instead of involving the supervisor.
func (p *PID) answer(ctx *actorContext, req *Request) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.Panics.Add(1)
			select {
			case req.Reply <- fmt.Errorf("%s: panic: %v", p.name, r):
			default:
			}
		}
	}()
	p.actor.Receive(ctx, req.Message)
}

// handleFailure consults the supervisor about a panic. It reports true
// when the actor must terminate.
func (p *PID) handleFailure(ctx *actorContext, cause any) bool {
	p.metrics.Panics.Add(1)
	reason := fmt.Sprintf("panic: %v", cause)
	p.logger.Error("actor panicked",
		"panic", cause,
		"messageType", fmt.Sprintf("%T", ctx.message))

	decision := Stop
	if p.supervisor != nil {
		decision = p.supervisor.HandleFailure(p, errors.New(reason))
	}

	switch decision {
	case Resume:
		return false
	case Restart:
		p.restart(ctx)
		return false
	case Escalate:
		p.logger.Error("escalating failure", "actor", p.name)
		p.finish(reason)
		return true
	default: // Stop
		p.finish(reason)
		return true
	}
}

// restart drains the mailbox and replays Started, keeping the same
// goroutine, registration, links and watchers.
func (p *PID) restart(ctx *actorContext) {
	p.restarts.Add(1)
	p.metrics.Restarts.Add(1)
	p.logger.Info("restarting actor", "restarts", p.restarts.Load())

drain:
	for {
		select {
		case <-p.mailbox:
		default:
			break drain
		}
	}

	ctx.sender = nil
	ctx.message = Started{}
	if cause := p.safeReceive(ctx, Started{}); cause != nil {
		p.logger.Error("panic during restart", "panic", cause)
	}
}

// finish terminates the actor exactly once: release the name, wake
// waiters, notify monitors and propagate over links.
func (p *PID) finish(reason string) {
	p.terminate.Do(func() {
		p.running.Store(false)
		p.reason = reason
		p.cancel()
		p.system.unregister(p.name, p)
		close(p.done)

		p.peerMu.Lock()
		p.finished = true
		watchers := p.watchers
		p.watchers = nil
		links := make([]*PID, 0, len(p.links))
		for peer := range p.links {
			links = append(links, peer)
		}
		p.links = nil
		p.peerMu.Unlock()

		for _, w := range watchers {
			p.notifyWatcher(w, reason)
		}
		for _, peer := range links {
			peer.dropLink(p)
			if reason != ReasonNormal && reason != ReasonShutdown {
				peer.exitFrom(p, reason)
			}
		}
	})
}

func (p *PID) notifyWatcher(w *PID, reason string) {
	if err := w.tell(Down{Name: p.name, Reason: reason}, nil); err != nil {
		p.logger.Debug("down notification dropped",
			"watcher", w.Name(), "error", err)
	}
}

// exitFrom handles an abnormal termination of a linked peer: trap it as
// an ExitSignal message, or die with the same reason.
func (p *PID) exitFrom(from *PID, reason string) {
	if p.trapExits.Load() {
		if err := p.tell(ExitSignal{From: from.name, Reason: reason}, nil); err != nil {
			p.logger.Debug("exit signal dropped", "from", from.name, "error", err)
		}
		return
	}
	if err := p.tell(exit{reason: reason}, nil); err != nil {
		p.cancel()
	}
}

// actorContext is handed to Receive for the duration of one message.
type actorContext struct {
	self    *PID
	sender  *PID
	system  *System
	logger  log.Logger
	message any
}

// Context is the view an actor has of the runtime while handling a
// message.
type Context interface {
	Self() *PID
	Sender() *PID
	System() *System
	Logger() log.Logger
	Message() any
	Respond(msg any)
	Tell(pid *PID, msg any) error
}

// Self returns the current actor's PID.
func (c *actorContext) Self() *PID {
	return c.self
}

// Sender returns the sender of the current message, if one was set.
func (c *actorContext) Sender() *PID {
	return c.sender
}

// System returns the actor system.
func (c *actorContext) System() *System {
	return c.system
}

// Logger returns the actor's logger.
func (c *actorContext) Logger() log.Logger {
	return c.logger
}

// Message returns the envelope payload being processed.
func (c *actorContext) Message() any {
	return c.message
}

// Respond answers the current request. Calling Respond outside a
// request handler is a no-op apart from a log line.
func (c *actorContext) Respond(msg any) {
	req, ok := c.message.(*Request)
	if !ok {
		c.logger.Error("respond outside request", "actor", c.self.Name())
		return
	}
	select {
	case req.Reply <- msg:
	default:
		c.logger.Error("reply not delivered", "actor", c.self.Name())
	}
}

// Tell sends a message to another actor with self as the sender.
func (c *actorContext) Tell(pid *PID, msg any) error {
	return pid.Send(msg, c.self)
}
