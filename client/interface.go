package client

import (
	"context"

	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/types"
)

// Task contains a single problem run request
type Task interface {
	// Context is done when the submitter no longer waits for the task
	Context() context.Context

	// Param get the problem task
	Param() *types.ProblemTask

	// Parsed called when fixtures have been enumerated
	Parsed(*problem.Config)

	// Compiled called when source have been built (success / fail)
	Compiled(*types.ProgressCompiled)

	// Progressed called when single test case finished
	Progressed(*types.ProgressProgressed)

	// Finished called when all test cases finished / compile failed
	Finished(*types.JudgeResult)
}

// Client should receive tasks from a presentation layer and
// sent them through go channel
type Client interface {
	// C return channel to receive works
	C() <-chan Task
}
