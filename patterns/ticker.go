package patterns

import (
	"time"

	"github.com/ccarvalho-eng/grimoire/actor"
)

// Ticker is the periodic-timer demonstration: on start it schedules a
// repeating message to itself and counts the ticks it receives. The
// stream stops with the actor.
type Ticker struct {
	interval time.Duration
	ticks    int
	cancel   func()
}

// NewTicker creates a ticker firing every interval.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Receive processes ticker messages.
func (t *Ticker) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case actor.Started:
		t.cancel = ctx.Self().SendEvery(t.interval, actor.TimerMessage{ID: "tick"})
	case actor.TimerMessage:
		t.ticks++
	case TickCount:
		ctx.Respond(t.ticks)
	case actor.Stopping:
		if t.cancel != nil {
			t.cancel()
		}
	}
}
