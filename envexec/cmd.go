package envexec

import (
	"context"
	"os"
	"time"
)

// Size represent data size in bytes
type Size uint64

// Byte returns size in bytes
func (s Size) Byte() uint64 {
	return uint64(s)
}

// NewStoreFile creates a new file in storage
type NewStoreFile func() (*os.File, error)

// Cmd defines instruction to run a command line as a child process
type Cmd struct {
	// Command is the fully expanded command line
	Command string

	// Shell runs Command through the system shell (sh -c / cmd /C),
	// otherwise Command is split into arguments and executed directly
	Shell bool

	// working directory and environment, inherited when empty
	Dir string
	Env []string

	// Stdin is written to the standard input of the process
	Stdin []byte

	// resource limits, zero means unlimited
	TimeLimit   time.Duration
	OutputLimit Size

	// Waiter is called after cmd starts and it should return
	// once time limit exceeded.
	// return true to as TLE and false as normal exits (context finished)
	Waiter func(context.Context) bool

	// NewStoreFile creates backing files for stdin / stdout / stderr,
	// temporary files are used when nil
	NewStoreFile NewStoreFile
}

// Result defines the running result for single Cmd
type Result struct {
	Status Status

	ExitStatus int

	Error string // error

	Stdin  []byte
	Stdout []byte
	Stderr []byte

	Time time.Duration
}
