package types

import (
	"time"

	"github.com/procon-tools/go-procon/envexec"
)

// RunTaskResult return the result for run task
type RunTaskResult struct {
	// compile result
	Compile *CompileResult

	// exec result
	Exec *ExecResult
}

// CompileResult returns result for compile tasks
type CompileResult struct {
	Error string // compiler diagnostic if failed, empty on success
	Time  time.Duration
}

// ExecResult returns result for exec tasks
type ExecResult struct {
	Status     envexec.Status
	ExitStatus int

	// error if present else empty string
	Error string

	Time time.Duration

	// stdin / answer content
	Input  []byte
	Answer []byte

	// actual output and stderr
	UserOutput []byte
	UserError  []byte

	// kept artifacts, name -> file store id
	Artifacts map[string]string
}
