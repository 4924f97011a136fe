package envexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

var errEmptyCommand = errors.New("empty command")

// runSingle runs Cmd and waits for it to exit, be killed by the time limit
// or be canceled by ctx
func runSingle(pc context.Context, c *Cmd, fds *cmdFiles) (result Result) {
	cmd, err := newExecCmd(c)
	if err != nil {
		return Result{
			Status:     StatusRuntimeError,
			ExitStatus: -1,
			Error:      err.Error(),
		}
	}
	cmd.Stdin = fds.stdin
	cmd.Stdout = fds.stdout
	cmd.Stderr = fds.stderr

	// start the cmd as root of its own process tree
	start := time.Now()
	tree, err := startProcessTree(cmd)
	if err != nil {
		return Result{
			Status:     StatusRuntimeError,
			ExitStatus: -1,
			Error:      fmt.Sprintf("start: %v", err),
		}
	}
	defer tree.release()

	rt := runSingleWait(pc, c, cmd, tree)

	// descendants may outlive the root process, sweep them as well
	tree.kill()

	result = Result{
		ExitStatus: exitStatus(cmd),
		Time:       rt.finish.Sub(start),
	}
	switch {
	case rt.exceeded:
		result.Status = StatusTimeLimitExceeded
		result.Error = fmt.Sprintf("killed after %v", c.TimeLimit)
	case rt.killed:
		result.Status = StatusRuntimeError
		result.Error = fmt.Sprintf("killed: %v", context.Cause(pc))
	case rt.err != nil:
		result.Status = StatusRuntimeError
		result.Error = rt.err.Error()
	default:
		result.Status = StatusPending
	}

	// collect whatever was written up to the exit / kill
	var collectErr []string
	if result.Stdout, err = collectFile(fds.stdout, c.OutputLimit); err != nil {
		collectErr = append(collectErr, fmt.Sprintf("collect stdout: %v", err))
	}
	if result.Stderr, err = collectFile(fds.stderr, c.OutputLimit); err != nil {
		collectErr = append(collectErr, fmt.Sprintf("collect stderr: %v", err))
	}
	if len(collectErr) > 0 {
		if result.Error != "" {
			collectErr = append([]string{result.Error}, collectErr...)
		}
		result.Error = strings.Join(collectErr, "; ")
	}
	return result
}

type waitResult struct {
	exceeded bool // time limit exceeded
	killed   bool // killed before exit (time limit or canceled)
	err      error
	finish   time.Time
}

// runSingleWait races the process exit against the waiter, whichever
// resolves first decides the outcome and the other one is discarded
func runSingleWait(pc context.Context, c *Cmd, cmd *exec.Cmd, tree processTree) waitResult {
	ctx, cancel := context.WithCancel(pc)
	defer cancel()

	exitC := make(chan waitResult, 1)
	go func() {
		err := cmd.Wait()
		exitC <- waitResult{err: err, finish: time.Now()}
	}()

	limitC := make(chan bool, 1)
	go func() {
		limitC <- c.Waiter(ctx)
	}()

	select {
	case rt := <-exitC:
		// exited first, defuse the waiter
		cancel()
		<-limitC
		return rt

	case exceeded := <-limitC:
		tree.kill()
		rt := <-exitC
		rt.exceeded = exceeded
		rt.killed = true
		return rt
	}
}

func newExecCmd(c *Cmd) (*exec.Cmd, error) {
	line := strings.TrimSpace(c.Command)
	if line == "" {
		return nil, errEmptyCommand
	}

	var cmd *exec.Cmd
	if c.Shell {
		cmd = shellCommand(line)
	} else {
		args, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("parse command %q: %w", line, err)
		}
		if len(args) == 0 {
			return nil, errEmptyCommand
		}
		cmd = exec.Command(args[0], args[1:]...)
	}
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}
	return cmd, nil
}

func exitStatus(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
