package patterns

import (
	"github.com/ccarvalho-eng/grimoire/actor"
)

// Register is the name-registration demonstration: it claims name in
// the system directory by spawning a keeper actor under it. Claiming a
// taken name returns actor.ErrNameTaken; the name is released when the
// keeper stops.
func Register(system *actor.System, name string) (*actor.PID, error) {
	return system.Spawn(name, keeper{})
}

// WhereIs resolves a registered name to its PID.
func WhereIs(system *actor.System, name string) (*actor.PID, bool) {
	return system.Lookup(name)
}

// keeper holds a registered name and answers pings.
type keeper struct{}

func (keeper) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case Ping:
		ctx.Respond(Pong{})
	}
}
