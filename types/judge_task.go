package types

import (
	"time"
)

// ProblemTask contains a request to grade a source against its fixtures
type ProblemTask struct {
	Source       string // source file path
	BuildCommand string // build template, empty for no build step
	RunCommand   string // run template expanded per case
	FixturesDir  string // <dir>/<id>.in.txt, <dir>/<id>.out.txt

	TimeLimit        time.Duration // per case, default applied when zero
	CompileTimeLimit time.Duration
}

// CustomTask contains a request to run a source once with given stdin
type CustomTask struct {
	Source       string
	BuildCommand string
	RunCommand   string
	Stdin        []byte

	TimeLimit        time.Duration
	CompileTimeLimit time.Duration
}
