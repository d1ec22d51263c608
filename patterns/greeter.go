package patterns

import (
	"github.com/ccarvalho-eng/grimoire/actor"
)

// Greeter is the fire-and-forget demonstration: senders Tell it a Greet
// and move on; the greeting is processed asynchronously in the actor's
// own goroutine.
type Greeter struct {
	greeted []string
}

// Receive processes greeter messages.
func (g *Greeter) Receive(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case Greet:
		ctx.Logger().Info("hello", "name", m.Name)
		g.greeted = append(g.greeted, m.Name)
	case Greeted:
		out := make([]string, len(g.greeted))
		copy(out, g.greeted)
		ctx.Respond(out)
	}
}
