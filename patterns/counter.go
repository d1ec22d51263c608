package patterns

import (
	"github.com/ccarvalho-eng/grimoire/actor"
)

// Counter is the stateful message-loop demonstration: a single integer
// owned exclusively by the actor, mutated only by the messages it
// receives and destroyed when the actor stops.
type Counter struct {
	value int
}

// NewCounter creates a counter starting at initial.
func NewCounter(initial int) *Counter {
	return &Counter{value: initial}
}

// Receive processes counter messages.
func (c *Counter) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case Increment:
		c.value++
	case Decrement:
		c.value--
	case GetValue:
		ctx.Respond(c.value)
	}
}
