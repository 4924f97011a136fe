package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/procon-tools/go-procon/envexec"
)

// CompileError is returned by Build when the build command failed
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// BuildOptions defines how the build command runs
type BuildOptions struct {
	Dir          string
	TimeLimit    time.Duration // zero means unlimited
	OutputLimit  envexec.Size
	NewStoreFile envexec.NewStoreFile
}

// Build runs the fully expanded build command. An empty command does
// nothing. Failure is reported as *CompileError carrying the captured
// stdout and stderr followed by the failure description.
func Build(ctx context.Context, command string, opt BuildOptions) error {
	if strings.TrimSpace(command) == "" {
		return nil
	}
	s := &envexec.Single{Cmd: &envexec.Cmd{
		Command:      command,
		Shell:        true,
		Dir:          opt.Dir,
		TimeLimit:    opt.TimeLimit,
		OutputLimit:  opt.OutputLimit,
		NewStoreFile: opt.NewStoreFile,
	}}
	rt := s.Run(ctx)
	if rt.Status == envexec.StatusPending {
		return nil
	}

	var msg strings.Builder
	msg.Write(rt.Stdout)
	msg.Write(rt.Stderr)
	if msg.Len() > 0 && !strings.HasSuffix(msg.String(), "\n") {
		msg.WriteByte('\n')
	}
	switch rt.Status {
	case envexec.StatusTimeLimitExceeded:
		fmt.Fprintf(&msg, "compile time limit exceeded (%v)", opt.TimeLimit)
	default:
		fmt.Fprintf(&msg, "Error: Command failed: %s\n%s", command, rt.Error)
	}
	return &CompileError{Message: msg.String()}
}
