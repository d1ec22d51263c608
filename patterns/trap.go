package patterns

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ccarvalho-eng/grimoire/actor"
)

// Failure kinds reported by Trap.
const (
	// KindError marks a structured failure: the computation returned a
	// non-nil error.
	KindError = "error"

	// KindPanic marks an uncaught signal: the computation panicked.
	KindPanic = "panic"
)

// Outcome reports how a trapped computation ended.
type Outcome struct {
	OK     bool
	Kind   string // KindError or KindPanic when !OK
	Reason string
}

var trapSeq atomic.Int64

// Trap is the linked-spawn and error-trapping demonstration: fn runs in
// its own actor, linked to a reporter that traps exits. The caller gets
// back one Outcome whichever way fn ends — success, a returned error,
// or a panic that travels to the reporter as an exit signal over the
// link.
func Trap(system *actor.System, fn func() error, timeout time.Duration) (Outcome, error) {
	id := trapSeq.Add(1)
	out := make(chan Outcome, 1)

	reporterPID, err := system.Spawn(
		fmt.Sprintf("trap-reporter-%d", id),
		&reporter{out: out},
		actor.WithTrapExits(),
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("spawn reporter: %w", err)
	}
	defer reporterPID.Stop()

	_, err = system.Spawn(
		fmt.Sprintf("trap-runner-%d", id),
		&runner{fn: fn, reporter: reporterPID},
		actor.WithLink(reporterPID),
		actor.WithSupervisor(actor.StopOnFailure{}),
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("spawn runner: %w", err)
	}

	select {
	case o := <-out:
		return o, nil
	case <-time.After(timeout):
		return Outcome{}, fmt.Errorf("no outcome after %v: %w", timeout, actor.ErrTimeout)
	}
}

// runner executes the user computation once on Started and stops
// itself. A panic in fn escapes Receive on purpose: the StopOnFailure
// strategy turns it into an abnormal exit that the link propagates.
type runner struct {
	fn       func() error
	reporter *actor.PID
}

func (r *runner) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case actor.Started:
		if err := r.fn(); err != nil {
			_ = ctx.Tell(r.reporter, failed{reason: err.Error()})
		} else {
			_ = ctx.Tell(r.reporter, succeeded{})
		}
		_ = ctx.Self().Tell(actor.Stopping{})
	}
}

type succeeded struct{}

type failed struct {
	reason string
}

// reporter folds runner messages and exit signals into one Outcome.
type reporter struct {
	out  chan Outcome
	sent bool
}

func (r *reporter) Receive(_ actor.Context, msg any) {
	switch m := msg.(type) {
	case succeeded:
		r.report(Outcome{OK: true})
	case failed:
		r.report(Outcome{Kind: KindError, Reason: m.reason})
	case actor.ExitSignal:
		r.report(Outcome{Kind: KindPanic, Reason: m.Reason})
	}
}

func (r *reporter) report(o Outcome) {
	if r.sent {
		return
	}
	r.sent = true
	r.out <- o
}
