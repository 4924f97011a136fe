package problem

import (
	"github.com/procon-tools/go-procon/file"
)

const (
	// InputSuffix is the file name suffix of a case input
	InputSuffix = ".in.txt"
	// AnswerSuffix is the file name suffix of a case expected output
	AnswerSuffix = ".out.txt"
	// TestCasesDir is the fixtures directory name next to a task source
	TestCasesDir = "testcases"
)

// Config defines a problem judgement configuration
type Config struct {
	Dir   string // fixtures directory
	Cases []Case // cases sorted by ID
}

// Case defines single judge case
type Case struct {
	ID     string
	Input  file.Local
	Answer file.Local // may point to a missing file
}
