package envexec

import (
	"fmt"
)

// Status defines the verdict of a single run
type Status int

// Defines run status, transitions are one-way:
// Pending -> RuntimeError / TimeLimitExceeded (process runner)
// Pending -> Accepted / WrongAnswer (verifier)
// CompileError is only assigned by the builder
const (
	// not decided yet, the verifier should resolve it
	StatusPending Status = iota

	// exit normally
	StatusAccepted
	StatusWrongAnswer

	// exit with error
	StatusRuntimeError      // RE
	StatusTimeLimitExceeded // TLE

	// build failed, no case was run
	StatusCompileError // CE
)

var statusToString = []string{
	"Pending",
	"Accepted",
	"Wrong Answer",
	"Runtime Error",
	"Time Limit Exceeded",
	"Compile Error",
}

var statusToShort = []string{
	"WJ",
	"AC",
	"WA",
	"RE",
	"TLE",
	"CE",
}

// stringToStatus map both display name and short name to corresponding Status
var stringToStatus = make(map[string]Status)

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0]
	}
	return statusToString[si]
}

// Short returns the abbreviation used by contest sites (AC, WA, ...)
func (s Status) Short() string {
	si := int(s)
	if si < 0 || si >= len(statusToShort) {
		return statusToShort[0]
	}
	return statusToShort[si]
}

// Terminal returns whether the status is a final verdict
func (s Status) Terminal() bool {
	return s > StatusPending && int(s) < len(statusToString)
}

// MarshalText encodes status as its display name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes status from display name or short name
func (s *Status) UnmarshalText(b []byte) error {
	v, err := StringToStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// StringToStatus convert string to Status
func StringToStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid string converting: %s", s)
	}
	return v, nil
}

func init() {
	for i, v := range statusToString {
		stringToStatus[v] = Status(i)
	}
	for i, v := range statusToShort {
		stringToStatus[v] = Status(i)
	}
}
