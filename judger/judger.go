package judger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/taskqueue"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

var errNoResponse = errors.New("no response from runner")

// Judger translates problem tasks into run tasks for runners
type Judger struct {
	taskqueue.Sender
	problem.Builder

	Logger    *zap.Logger
	TimeLimit time.Duration // per case when the task does not specify

	locks keyedMutex
}

// progress receives progress of a problem run
type progress interface {
	Parsed(*problem.Config)
	Compiled(*types.ProgressCompiled)
	Progressed(*types.ProgressProgressed)
}

type nopProgress struct{}

func (nopProgress) Parsed(*problem.Config) {}
func (nopProgress) Compiled(*types.ProgressCompiled) {}
func (nopProgress) Progressed(*types.ProgressProgressed) {}

func (j *Judger) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}

func (j *Judger) send(ctx context.Context, task types.RunTask) (*types.RunTaskResult, error) {
	rtC := make(chan types.RunTaskResult, 1)
	if err := j.Send(ctx, task, rtC); err != nil {
		return nil, err
	}
	select {
	case rt := <-rtC:
		return &rt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// compile builds the source, returns the compile error message if failed
func (j *Judger) compile(ctx context.Context, source, command string, timeLimit time.Duration) (string, bool) {
	rt, err := j.send(ctx, types.RunTask{
		Type:             types.RunTaskCompile,
		Source:           source,
		BuildCommand:     command,
		CompileTimeLimit: timeLimit,
	})
	switch {
	case err != nil:
		return err.Error(), false
	case rt.Compile == nil:
		return errNoResponse.Error(), false
	case rt.Compile.Error != "":
		return rt.Compile.Error, false
	}
	return "", true
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}

// keyedMutex serializes work on the same key
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	ref int
}

// Lock locks the key and returns the unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*keyedLock)
	}
	l, ok := k.m[key]
	if !ok {
		l = &keyedLock{}
		k.m[key] = l
	}
	l.ref++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		k.mu.Lock()
		defer k.mu.Unlock()
		l.ref--
		if l.ref == 0 {
			delete(k.m, key)
		}
	}
}
