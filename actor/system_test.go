package actor_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	"github.com/ccarvalho-eng/grimoire/actor"
)

func TestSystemSpawnAndLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("echo", &echoActor{})
	require.NoError(t, err)
	require.NotNil(t, pid)
	assert.Equal(t, "echo", pid.Name())
	assert.True(t, pid.IsRunning())

	found, ok := system.Lookup("echo")
	assert.True(t, ok)
	assert.Equal(t, pid, found)

	_, ok = system.Lookup("nobody")
	assert.False(t, ok)

	assert.Contains(t, system.Names(), "echo")
}

func TestSystemNameTaken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	_, err := system.Spawn("answering", &echoActor{})
	require.NoError(t, err)

	_, err = system.Spawn("answering", &echoActor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, actor.ErrNameTaken)
}

func TestSystemNameReleasedOnStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("transient", &echoActor{})
	require.NoError(t, err)

	pid.Stop()
	time.Sleep(20 * time.Millisecond)

	_, ok := system.Lookup("transient")
	assert.False(t, ok)

	// the name can be claimed again
	_, err = system.Spawn("transient", &echoActor{})
	assert.NoError(t, err)
}

func TestSystemEmptyName(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	_, err := system.Spawn("", &echoActor{})
	assert.Error(t, err)
}

func TestSystemShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pids := make([]*actor.PID, 0, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		pid, err := system.Spawn(name, &echoActor{})
		require.NoError(t, err)
		pids = append(pids, pid)
	}

	require.NoError(t, system.Shutdown(time.Second))
	for _, pid := range pids {
		assert.False(t, pid.IsRunning())
	}
	assert.Empty(t, system.Names())
}

func TestSystemContextCancelStopsActors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	system := actor.NewSystem(ctx, log.NewNopLogger())
	pid, err := system.Spawn("doomed", &echoActor{})
	require.NoError(t, err)

	cancel()

	require.Eventually(t, func() bool {
		return !pid.IsRunning()
	}, time.Second, 10*time.Millisecond)
}

// test actors shared by the package tests

type echoActor struct{}

func (echoActor) Receive(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case string:
		ctx.Respond("echo: " + m)
	}
}

type counterActor struct {
	count atomic.Int32
}

type incrementMsg struct {
	value int32
}

type decrementMsg struct{}

type getCountMsg struct{}

func (c *counterActor) Receive(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case *incrementMsg:
		c.count.Add(m.value)
	case decrementMsg:
		c.count.Add(-1)
	case getCountMsg:
		ctx.Respond(c.count.Load())
	}
}

type panicOnActor struct {
	panicOn   string
	processed atomic.Int32
}

func (p *panicOnActor) Receive(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case string:
		if m == p.panicOn {
			panic("intentional panic")
		}
		p.processed.Add(1)
	}
}

// collectorActor forwards every user message to a channel so tests can
// observe Down and ExitSignal deliveries.
type collectorActor struct {
	ch chan any
}

func newCollectorActor() *collectorActor {
	return &collectorActor{ch: make(chan any, 16)}
}

func (c *collectorActor) Receive(_ actor.Context, msg any) {
	switch msg.(type) {
	case actor.Started, actor.Stopping:
	default:
		select {
		case c.ch <- msg:
		default:
		}
	}
}

func waitForMessage(t *testing.T, ch chan any, timeout time.Duration) any {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

type nonResponsiveActor struct{}

func (nonResponsiveActor) Receive(actor.Context, any) {}

// gatedActor blocks on its first user message until the gate is closed,
// letting tests fill a mailbox deterministically.
type gatedActor struct {
	gate chan struct{}
}

func (g *gatedActor) Receive(_ actor.Context, msg any) {
	switch msg.(type) {
	case actor.Started, actor.Stopping:
	default:
		<-g.gate
	}
}
