package types

import (
	"time"

	"github.com/procon-tools/go-procon/envexec"
)

// ProgressStatus defines progress status
type ProgressStatus int

// Whether progress success / fail
const (
	ProgressSucceeded ProgressStatus = iota + 1
	ProgressFailed
)

// ProgressCompiled compiled progress
type ProgressCompiled struct {
	Status  ProgressStatus
	Message string // compiler output if failed
}

// ProgressProgressed contains progress of current task
type ProgressProgressed struct {
	// defines which test case finished
	TestCaseIndex int

	// test case result
	TestCaseResult
}

// JudgeResult is the report of a problem run, cases are in fixture order
type JudgeResult struct {
	Status       envexec.Status
	CompileError string
	Cases        []TestCaseResult

	Summary map[envexec.Status]int
	Time    time.Duration // sum of case time
}

// TestCaseResult contains result for single case
type TestCaseResult struct {
	ID string

	Status     envexec.Status
	ExitStatus int
	Error      string

	Time time.Duration

	// detail outputs
	Input      []byte
	Answer     []byte
	UserOutput []byte
	UserError  []byte

	Artifacts map[string]string // name -> file store id
}

// CustomResult contains result of an ad-hoc run
type CustomResult struct {
	Status       envexec.Status
	CompileError string

	ExitStatus int
	Error      string
	Time       time.Duration

	Stdin  []byte
	Stdout []byte
	Stderr []byte

	Artifacts map[string]string
}

// NewCompileErrorResult creates a report for a failed build
func NewCompileErrorResult(msg string) *JudgeResult {
	return &JudgeResult{
		Status:       envexec.StatusCompileError,
		CompileError: msg,
		Summary:      map[envexec.Status]int{envexec.StatusCompileError: 1},
	}
}

// Summarize fills the overall status, per verdict counters and total time
// from the case results. The first case not accepted decides the status.
func (r *JudgeResult) Summarize() {
	if r.CompileError != "" {
		r.Status = envexec.StatusCompileError
		return
	}
	r.Status = envexec.StatusAccepted
	r.Summary = make(map[envexec.Status]int)
	r.Time = 0
	for _, c := range r.Cases {
		r.Summary[c.Status]++
		r.Time += c.Time
		if r.Status == envexec.StatusAccepted && c.Status != envexec.StatusAccepted {
			r.Status = c.Status
		}
	}
}

// Accepted reports whether every case is accepted
func (r *JudgeResult) Accepted() bool {
	return r.Status == envexec.StatusAccepted
}

// ExecToTestCaseResult converts an exec result into a case result
func ExecToTestCaseResult(id string, e *ExecResult) TestCaseResult {
	return TestCaseResult{
		ID:         id,
		Status:     e.Status,
		ExitStatus: e.ExitStatus,
		Error:      e.Error,
		Time:       e.Time,
		Input:      e.Input,
		Answer:     e.Answer,
		UserOutput: e.UserOutput,
		UserError:  e.UserError,
		Artifacts:  e.Artifacts,
	}
}
