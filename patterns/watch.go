package patterns

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ccarvalho-eng/grimoire/actor"
)

var watchSeq atomic.Int64

// Watch is the monitored-spawn demonstration: fn runs in its own actor
// while a watcher monitors it. The returned Down carries reason
// "normal" when fn ran to completion, or the panic reason when it blew
// up.
func Watch(system *actor.System, fn func(), timeout time.Duration) (actor.Down, error) {
	id := watchSeq.Add(1)
	ch := make(chan actor.Down, 1)

	watcherPID, err := system.Spawn(
		fmt.Sprintf("watcher-%d", id),
		&downWatcher{ch: ch},
	)
	if err != nil {
		return actor.Down{}, fmt.Errorf("spawn watcher: %w", err)
	}
	defer watcherPID.Stop()

	jobPID, err := system.Spawn(
		fmt.Sprintf("watched-%d", id),
		&job{fn: fn},
		actor.WithSupervisor(actor.StopOnFailure{}),
	)
	if err != nil {
		return actor.Down{}, fmt.Errorf("spawn watched job: %w", err)
	}
	jobPID.Monitor(watcherPID)

	select {
	case down := <-ch:
		return down, nil
	case <-time.After(timeout):
		return actor.Down{}, fmt.Errorf("no down after %v: %w", timeout, actor.ErrTimeout)
	}
}

// job runs the watched computation once and stops itself.
type job struct {
	fn func()
}

func (j *job) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case actor.Started:
		j.fn()
		_ = ctx.Self().Tell(actor.Stopping{})
	}
}

// downWatcher forwards Down notifications to the caller.
type downWatcher struct {
	ch chan actor.Down
}

func (w *downWatcher) Receive(_ actor.Context, msg any) {
	if down, ok := msg.(actor.Down); ok {
		select {
		case w.ch <- down:
		default:
		}
	}
}
