package envexec

import (
	"context"
)

// Single defines the running instruction to run single
// command and wait for it under its time limit
type Single struct {
	Cmd *Cmd
}

// Run starts the cmd and returns exec results. It never returns
// before the whole process tree of the cmd has been terminated.
func (s *Single) Run(ctx context.Context) Result {
	c := s.Cmd
	if c.Waiter == nil {
		w := &waiter{timeLimit: c.TimeLimit}
		c.Waiter = w.Wait
	}
	// prepare files
	fds, err := prepareFiles(c)
	if err != nil {
		return Result{
			Status:     StatusRuntimeError,
			ExitStatus: -1,
			Stdin:      c.Stdin,
			Error:      err.Error(),
		}
	}
	defer fds.close()

	result := runSingle(ctx, c, fds)
	result.Stdin = c.Stdin
	return result
}
