package actor

import (
	"sync"
	"time"
)

// SendAfter delivers msg to the actor once after d. The returned timer
// can be stopped to cancel delivery.
func (p *PID) SendAfter(d time.Duration, msg any) *time.Timer {
	return time.AfterFunc(d, func() {
		if err := p.Tell(msg); err != nil {
			p.logger.Debug("timer message dropped", "error", err)
		}
	})
}

// SendEvery delivers msg to the actor every d until the returned cancel
// function is called or the actor terminates.
func (p *PID) SendEvery(d time.Duration, msg any) (cancel func()) {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.Tell(msg); err != nil {
					p.logger.Debug("ticker message dropped", "error", err)
				}
			case <-stop:
				return
			case <-p.done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}
