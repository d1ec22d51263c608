package actor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	"github.com/ccarvalho-eng/grimoire/actor"
)

func TestSendAfter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	collector := newCollectorActor()
	pid, err := system.Spawn("delayed", collector)
	require.NoError(t, err)

	pid.SendAfter(20*time.Millisecond, actor.TimerMessage{ID: "once"})

	msg := waitForMessage(t, collector.ch, time.Second)
	tm, ok := msg.(actor.TimerMessage)
	require.True(t, ok, "expected TimerMessage, got %T", msg)
	assert.Equal(t, "once", tm.ID)
}

func TestSendAfterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	collector := newCollectorActor()
	pid, err := system.Spawn("never", collector)
	require.NoError(t, err)

	timer := pid.SendAfter(50*time.Millisecond, actor.TimerMessage{ID: "never"})
	timer.Stop()

	select {
	case msg := <-collector.ch:
		t.Fatalf("unexpected message %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	collector := newCollectorActor()
	pid, err := system.Spawn("periodic", collector)
	require.NoError(t, err)

	stop := pid.SendEvery(10*time.Millisecond, actor.TimerMessage{ID: "tick"})

	for i := 0; i < 3; i++ {
		msg := waitForMessage(t, collector.ch, time.Second)
		tm, ok := msg.(actor.TimerMessage)
		require.True(t, ok, "expected TimerMessage, got %T", msg)
		assert.Equal(t, "tick", tm.ID)
	}

	stop()
	stop() // cancelling twice is fine

	// drain anything in flight, then expect silence
	time.Sleep(30 * time.Millisecond)
	for len(collector.ch) > 0 {
		<-collector.ch
	}
	select {
	case msg := <-collector.ch:
		t.Fatalf("tick after cancel: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendEveryStopsWithActor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, log.NewNopLogger())

	collector := newCollectorActor()
	pid, err := system.Spawn("mortal", collector)
	require.NoError(t, err)

	stop := pid.SendEvery(10*time.Millisecond, actor.TimerMessage{ID: "tick"})
	defer stop()

	waitForMessage(t, collector.ch, time.Second)
	pid.Stop()

	// the ticker goroutine exits with the actor; no further sends succeed
	time.Sleep(50 * time.Millisecond)
	assert.False(t, pid.IsRunning())
}
