package patterns

import (
	"errors"
	"time"

	"github.com/ccarvalho-eng/grimoire/actor"
)

// ErrUnavailable is the flaky service's failure mode.
var ErrUnavailable = errors.New("service unavailable")

// FlakyService answers DoWork requests, failing its first failures
// requests and succeeding afterwards. It exists to demonstrate guarding
// request/response calls with a Breaker.
type FlakyService struct {
	failuresLeft int
}

// NewFlakyService creates a service that fails the first failures
// requests.
func NewFlakyService(failures int) *FlakyService {
	return &FlakyService{failuresLeft: failures}
}

// Receive processes service requests.
func (f *FlakyService) Receive(ctx actor.Context, msg any) {
	switch msg.(type) {
	case DoWork:
		if f.failuresLeft > 0 {
			f.failuresLeft--
			ctx.Respond(ErrUnavailable)
			return
		}
		ctx.Respond("done")
	}
}

// GuardedCall asks the service for work under the breaker. While the
// breaker is open the service is never contacted.
func GuardedCall(b *actor.Breaker, service *actor.PID, timeout time.Duration) (string, error) {
	var result string
	err := b.Call(func() error {
		resp, err := service.Request(DoWork{}, timeout)
		if err != nil {
			return err
		}
		result = resp.(string)
		return nil
	})
	return result, err
}
