// Package actor is a small in-process actor runtime: named actors with
// buffered mailboxes, fire-and-forget and request/response messaging,
// links, monitors, timers and flat supervision strategies. It exists to
// host the demonstrations in the patterns package; it is not a
// distributed framework.
package actor

// Actor is implemented by anything that can be spawned into a System.
// Receive handles one message at a time, so state touched only from
// Receive needs no locking.
type Actor interface {
	Receive(ctx Context, msg any)
}

// ActorFunc adapts a plain function to the Actor interface.
type ActorFunc func(ctx Context, msg any)

// Receive implements Actor.
func (f ActorFunc) Receive(ctx Context, msg any) {
	f(ctx, msg)
}
