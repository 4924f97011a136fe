package channel

import (
	"context"

	"github.com/procon-tools/go-procon/taskqueue"
	"github.com/procon-tools/go-procon/types"
)

const buffSize = 512

var _ taskqueue.Queue = &Queue{}

// Queue implements taskqueue by go channel
type Queue struct {
	queue chan taskqueue.Task
}

// New creates new Queue with buffered go channel
func New() *Queue {
	return &Queue{
		queue: make(chan taskqueue.Task, buffSize),
	}
}

// Send puts task into run queue, it blocks while the queue is full
// until ctx is done
func (q *Queue) Send(ctx context.Context, t types.RunTask, r chan<- types.RunTaskResult) error {
	select {
	case q.queue <- Task{ctx: ctx, task: t, result: r}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiveC returns the underlying channel
func (q *Queue) ReceiveC() <-chan taskqueue.Task {
	return q.queue
}

// Task implements Task interface
type Task struct {
	ctx    context.Context
	task   types.RunTask
	result chan<- types.RunTaskResult
}

// Context returns the context of the sender
func (t Task) Context() context.Context {
	return t.ctx
}

// Task returns task parameters
func (t Task) Task() *types.RunTask {
	return &t.task
}

// Done returns the run task result
func (t Task) Done(r *types.RunTaskResult) {
	t.result <- *r
}
