package types

import (
	"time"

	"github.com/procon-tools/go-procon/file"
)

// Run task types
const (
	RunTaskCompile = "compile"
	RunTaskExec    = "exec"
)

// RunTask is used to send task into RunQueue
type RunTask struct {
	Type   string
	Source string // source path for template expansion and working directory

	// Used for compile task
	BuildCommand     string
	CompileTimeLimit time.Duration // zero uses the runner default

	// Used for exec task
	CaseID     string
	RunCommand string
	Input      file.File // nil for empty input
	Answer     file.File // nil skips verification

	TimeLimit time.Duration
}
