// Package localclient provides an in-process client, tasks are
// submitted by function call and progress is delivered to callbacks
package localclient

import (
	"context"

	"github.com/google/uuid"
	"github.com/procon-tools/go-procon/client"
	"github.com/procon-tools/go-procon/types"
)

const buffSize = 64

var _ client.Client = &Client{}

// Client implements client.Client over a go channel
type Client struct {
	tasks chan client.Task
}

// New creates a new local client
func New() *Client {
	return &Client{tasks: make(chan client.Task, buffSize)}
}

// C return channel to receive tasks
func (c *Client) C() <-chan client.Task {
	return c.tasks
}

// Submit enqueues the problem task, it blocks while the queue is full
// until ctx is done
func (c *Client) Submit(ctx context.Context, p types.ProblemTask, h Handler) (*Task, error) {
	return c.SubmitWithID(ctx, uuid.NewString(), p, h)
}

// SubmitWithID enqueues the problem task with given id, the task is
// canceled when ctx is done
func (c *Client) SubmitWithID(ctx context.Context, id string, p types.ProblemTask, h Handler) (*Task, error) {
	t := &Task{
		ID:       id,
		ctx:      ctx,
		param:    p,
		handler:  h,
		finished: make(chan *types.JudgeResult, 1),
	}
	select {
	case c.tasks <- t:
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
