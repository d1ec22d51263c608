package actor

import (
	"sync"
	"time"
)

// Decision is the supervisor's verdict on a failed actor.
type Decision int

const (
	// Resume keeps the actor running; the failed message is lost.
	Resume Decision = iota
	// Restart drains the mailbox and replays Started.
	Restart
	// Stop terminates the actor.
	Stop
	// Escalate terminates the actor and flags the failure.
	Escalate
)

// Strategy decides what to do when an actor panics. Strategies are flat:
// there is no supervisor hierarchy in this runtime.
type Strategy interface {
	HandleFailure(p *PID, err error) Decision
}

// DefaultSupervisor restarts a failed actor a bounded number of times,
// then stops it.
func DefaultSupervisor() Strategy {
	return &defaultSupervisor{maxRestarts: 3}
}

type defaultSupervisor struct {
	maxRestarts int32
}

func (s *defaultSupervisor) HandleFailure(p *PID, err error) Decision {
	if p.Restarts() >= s.maxRestarts {
		return Stop
	}
	return Restart
}

// AlwaysRestart restarts failed actors unconditionally, optionally
// delaying each restart.
type AlwaysRestart struct {
	Delay time.Duration
}

func (s *AlwaysRestart) HandleFailure(p *PID, err error) Decision {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	return Restart
}

// StopOnFailure stops a failed actor without restarting. Useful when the
// failure should propagate over links instead of being absorbed.
type StopOnFailure struct{}

func (StopOnFailure) HandleFailure(p *PID, err error) Decision {
	return Stop
}

// OneForOne restarts only the failed actor, escalating when restarts
// exceed MaxRestarts within the Within window.
type OneForOne struct {
	MaxRestarts int
	Within      time.Duration
	Decider     func(err error) Decision

	mu           sync.Mutex
	restartTimes map[*PID][]time.Time
}

func (s *OneForOne) HandleFailure(p *PID, err error) Decision {
	if s.Decider != nil {
		if decision := s.Decider(err); decision != Restart {
			return decision
		}
	}
	if p == nil {
		return Escalate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restartTimes == nil {
		s.restartTimes = make(map[*PID][]time.Time)
	}

	now := time.Now()
	cutoff := now.Add(-s.Within)
	times := s.restartTimes[p][:0]
	for _, t := range s.restartTimes[p] {
		if t.After(cutoff) {
			times = append(times, t)
		}
	}
	times = append(times, now)
	s.restartTimes[p] = times

	if len(times) > s.MaxRestarts {
		delete(s.restartTimes, p)
		return Escalate
	}
	return Restart
}
