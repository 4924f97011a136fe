package envexec

import (
	"context"
	"time"
)

type waiter struct {
	timeLimit time.Duration
}

// Wait blocks until the time limit exceeded (true) or ctx finished (false)
func (w *waiter) Wait(ctx context.Context) bool {
	if w.timeLimit <= 0 {
		<-ctx.Done()
		return false
	}

	timer := time.NewTimer(w.timeLimit)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
