package actor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	"github.com/ccarvalho-eng/grimoire/actor"
)

func TestTellAndRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	counter := &counterActor{}
	pid, err := system.Spawn("counter", counter)
	require.NoError(t, err)

	require.NoError(t, pid.Tell(&incrementMsg{value: 5}))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(5), counter.count.Load())

	for i := 0; i < 10; i++ {
		require.NoError(t, pid.Tell(&incrementMsg{value: 1}))
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(15), counter.count.Load())

	reply, err := pid.Request(getCountMsg{}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(15), reply.(int32))
}

func TestRequestTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("mute", nonResponsiveActor{})
	require.NoError(t, err)

	_, err = pid.Request("anyone there?", 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, actor.ErrTimeout)
	assert.Equal(t, int64(1), pid.Metrics().Timeouts.Load())
}

func TestRequestPanicAnswersCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("nervous", &panicOnActor{panicOn: "boom"})
	require.NoError(t, err)

	_, err = pid.Request("boom", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	// the actor survives a request panic
	assert.True(t, pid.IsRunning())
}

func TestSendToStoppedActor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("short-lived", &echoActor{})
	require.NoError(t, err)

	pid.Stop()
	time.Sleep(20 * time.Millisecond)

	err = pid.Tell("hello?")
	require.Error(t, err)
	assert.ErrorIs(t, err, actor.ErrNotRunning)

	_, err = pid.Request("hello?", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, actor.ErrNotRunning)
}

func TestMailboxFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	gate := make(chan struct{})
	defer close(gate)

	pid, err := system.Spawn("backed-up", &gatedActor{gate: gate},
		actor.WithMailbox(1))
	require.NoError(t, err)

	// first message parks the actor on the gate
	require.NoError(t, pid.Tell("work"))
	time.Sleep(20 * time.Millisecond)

	// one slot in the buffer, then overflow
	var full error
	for i := 0; i < 3; i++ {
		if err := pid.Tell("more work"); err != nil {
			full = err
			break
		}
	}
	require.Error(t, full)
	assert.ErrorIs(t, full, actor.ErrMailboxFull)
	assert.Positive(t, pid.Metrics().Dropped.Load())
}

func TestSelfStopViaStopping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("quitter", actor.ActorFunc(func(ctx actor.Context, msg any) {
		if msg == "quit" {
			_ = ctx.Self().Tell(actor.Stopping{})
		}
	}))
	require.NoError(t, err)

	require.NoError(t, pid.Tell("quit"))

	require.Eventually(t, func() bool {
		return !pid.IsRunning()
	}, time.Second, 10*time.Millisecond)

	_, ok := system.Lookup("quitter")
	assert.False(t, ok)
}

func TestStopIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("stoppable", &echoActor{})
	require.NoError(t, err)

	pid.Stop()
	pid.Stop()
	assert.False(t, pid.IsRunning())
}

func TestValidatableRejectedAtSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	pid, err := system.Spawn("strict", nonResponsiveActor{})
	require.NoError(t, err)

	err = pid.Tell(&validatedMsg{value: -1})
	require.Error(t, err)
	assert.Equal(t, int64(1), pid.Metrics().Invalid.Load())

	require.NoError(t, pid.Tell(&validatedMsg{value: 1}))
}

type validatedMsg struct {
	value int
}

func (v *validatedMsg) Validate() error {
	if v.value < 0 {
		return errors.New("value must be positive")
	}
	return nil
}
