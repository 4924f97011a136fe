package localclient

import (
	"context"

	"github.com/procon-tools/go-procon/client"
	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/types"
)

var _ client.Task = &Task{}

// Handler receives progress of a task, nil fields are ignored.
// Progressed may be called concurrently.
type Handler struct {
	Parsed     func(*problem.Config)
	Compiled   func(*types.ProgressCompiled)
	Progressed func(*types.ProgressProgressed)
}

// Task is a submitted problem task
type Task struct {
	ID string

	ctx      context.Context
	param    types.ProblemTask
	handler  Handler
	finished chan *types.JudgeResult
}

// Context returns the context the task was submitted with
func (t *Task) Context() context.Context {
	return t.ctx
}

// Param returns the problem task
func (t *Task) Param() *types.ProblemTask {
	return &t.param
}

// Parsed parsed
func (t *Task) Parsed(p *problem.Config) {
	if t.handler.Parsed != nil {
		t.handler.Parsed(p)
	}
}

// Compiled compiled
func (t *Task) Compiled(p *types.ProgressCompiled) {
	if t.handler.Compiled != nil {
		t.handler.Compiled(p)
	}
}

// Progressed progress
func (t *Task) Progressed(p *types.ProgressProgressed) {
	if t.handler.Progressed != nil {
		t.handler.Progressed(p)
	}
}

// Finished finished
func (t *Task) Finished(r *types.JudgeResult) {
	t.finished <- r
}

// Wait waits for the report of the task
func (t *Task) Wait(ctx context.Context) (*types.JudgeResult, error) {
	select {
	case r := <-t.finished:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
