// Package patterns collects short, independent demonstrations of
// message-passing idioms on top of the actor runtime: fire-and-forget
// sends, a stateful counter loop, a chunking worker pool, periodic
// timers, name registration, monitored and linked spawns, error
// trapping and a breaker-guarded flaky service.
package patterns

// Counter messages
type (
	// Increment raises the counter by one.
	Increment struct{}

	// Decrement lowers the counter by one.
	Decrement struct{}

	// GetValue asks for the current value via Request.
	GetValue struct{}
)

// Greeter messages
type (
	// Greet is a fire-and-forget greeting.
	Greet struct {
		Name string
	}

	// Greeted asks for the names greeted so far via Request.
	Greeted struct{}
)

// Ticker messages
type (
	// TickCount asks a Ticker how many ticks it has seen via Request.
	TickCount struct{}
)

// Registry messages
type (
	// Ping checks that a registered keeper is alive via Request.
	Ping struct{}

	// Pong answers a Ping.
	Pong struct{}
)

// Flaky service messages
type (
	// DoWork asks the flaky service for one unit of work via Request.
	DoWork struct{}
)
