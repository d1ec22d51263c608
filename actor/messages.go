package actor

// Termination reasons reported through Down and ExitSignal.
const (
	// ReasonNormal is the reason for a voluntary stop.
	ReasonNormal = "normal"

	// ReasonShutdown is the reason when the system context is cancelled.
	ReasonShutdown = "shutdown"
)

// System messages delivered alongside user messages.
type (
	// Started is the first message an actor receives after spawning,
	// and again after every supervised restart.
	Started struct{}

	// Stopping is delivered when an actor is asked to stop. The actor
	// may release resources in its handler; termination follows as soon
	// as the handler returns. An actor can stop itself by sending
	// Stopping to its own PID.
	Stopping struct{}

	// Down is delivered to every watcher registered with Monitor when
	// the watched actor terminates, whatever the reason.
	Down struct {
		Name   string
		Reason string
	}

	// ExitSignal is delivered to a linked actor that traps exits when
	// its peer terminates abnormally. Linked actors that do not trap
	// exits are stopped instead.
	ExitSignal struct {
		From   string
		Reason string
	}

	// TimerMessage is sent by SendAfter and SendEvery.
	TimerMessage struct {
		ID   string
		Data any
	}
)

// exit is the internal forced-termination message used for link
// propagation. It carries the reason of the peer that died.
type exit struct {
	reason string
}

// Request wraps a message that expects a reply. The actor sees the inner
// Message and answers by calling Context.Respond.
type Request struct {
	Message any
	Reply   chan any
}

// Validatable messages are checked before they are enqueued; invalid
// messages are rejected at the sender.
type Validatable interface {
	Validate() error
}
