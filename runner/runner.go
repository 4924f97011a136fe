package runner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/filestore"
	"github.com/procon-tools/go-procon/taskqueue"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

// Default limits applied when not configured
const (
	DefaultTimeLimit        = 3 * time.Second
	DefaultCompileTimeLimit = 30 * time.Second
	DefaultOutputLimit      = 64 << 20 // 64M
)

// Runner is the task runner
type Runner struct {
	Queue  taskqueue.Receiver
	Store  filestore.FileStore // scratch files, os temp dir if nil
	Logger *zap.Logger

	TimeLimit        time.Duration // used when task does not specify
	CompileTimeLimit time.Duration // zero applies default, negative means unlimited
	OutputLimit      envexec.Size
	KeepArtifacts    bool // keep actual output and stderr of each case in Store

	// ExecObserver is called after each exec task finished
	ExecObserver func(*types.RunTask, *types.ExecResult)
}

// Loop status a runner in a forever loop, waiting for task and execute
// call it in new goroutine
func (r *Runner) Loop(ctx context.Context) error {
	c := r.Queue.ReceiveC()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task, ok := <-c:
			if !ok {
				return nil
			}
			task.Done(r.run(task.Context(), task.Task()))
		}
	}
}

func (r *Runner) run(ctx context.Context, task *types.RunTask) *types.RunTaskResult {
	switch task.Type {
	case types.RunTaskCompile:
		return &types.RunTaskResult{Compile: r.compile(ctx, task)}
	default:
		rt := r.exec(ctx, task)
		if r.ExecObserver != nil {
			r.ExecObserver(task, rt)
		}
		return &types.RunTaskResult{Exec: rt}
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// scratch tracks the scratch files created for a single task
type scratch struct {
	r   *Runner
	ids []string
	tmp []string
}

func (s *scratch) New() (*os.File, error) {
	if s.r.Store == nil {
		f, err := os.CreateTemp("", "procon-")
		if err == nil {
			s.tmp = append(s.tmp, f.Name())
		}
		return f, err
	}
	f, err := s.r.Store.New()
	if err == nil {
		s.ids = append(s.ids, filepath.Base(f.Name()))
	}
	return f, err
}

// path creates an empty scratch file and returns its path
func (s *scratch) path(content []byte) (string, error) {
	f, err := s.New()
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (s *scratch) release() {
	for _, id := range s.ids {
		s.r.Store.Remove(id)
	}
	for _, p := range s.tmp {
		os.Remove(p)
	}
}
