// Package diff provides function to compare contents from reader and
// returns error information if they are different.
//
// The comparison is whitespace tolerant: white spaces around the whole
// text, carriage returns and spaces at the end of line are ignored, runs
// of white spaces inside a line are treated as a single space and blank
// lines are skipped entirely.
package diff

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"
)

const maxLineSize = 64 << 20

// MismatchError reports the first line that differs
type MismatchError struct {
	Line     int // line number in expected, 0 if expected run out of content
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("expected ended, actual have more content: %v", e.Actual)
	}
	return fmt.Sprintf("At line %d,\nexpected: %v\nactual: %v", e.Line, e.Expected, e.Actual)
}

// Compare compares actual with expected.
// if they are the same except tolerated white spaces,
// no error is returned
// otherwise, if error occurred / not same, error will be
// returned
func Compare(expected, actual io.Reader) error {
	expScan := newScanner(expected)
	actScan := newScanner(actual)

	for {
		exp, hasExp := expScan.next()
		act, hasAct := actScan.next()
		if err := expScan.sc.Err(); err != nil {
			return fmt.Errorf("read expected: %w", err)
		}
		if err := actScan.sc.Err(); err != nil {
			return fmt.Errorf("read actual: %w", err)
		}

		// EOF at the same time
		if !hasExp && !hasAct {
			return nil
		}
		if hasExp && hasAct && exp == act {
			continue
		}
		line := 0
		if hasExp {
			line = expScan.line
		}
		return &MismatchError{Line: line, Expected: exp, Actual: act}
	}
}

// Equal reports whether two byte slices are the same under Compare
func Equal(expected, actual []byte) bool {
	return Compare(bytes.NewReader(expected), bytes.NewReader(actual)) == nil
}

type scanner struct {
	sc      *bufio.Scanner
	line    int
	started bool // a non-blank line was returned
}

func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &scanner{sc: sc}
}

// next returns the next non-blank line in normalized form, the first
// one has its leading white spaces removed
func (s *scanner) next() (string, bool) {
	for s.sc.Scan() {
		s.line++
		b := s.sc.Bytes()
		if !s.started {
			b = bytes.TrimLeftFunc(b, unicode.IsSpace)
		}
		if v := normalize(b); v != "" {
			s.started = true
			return v, true
		}
	}
	return "", false
}

// normalize trims trailing spaces (including \r) and collapses every
// inner run of white spaces into a single space
func normalize(b []byte) string {
	b = bytes.TrimRightFunc(b, unicode.IsSpace)
	if len(b) == 0 {
		return ""
	}
	var buf bytes.Buffer
	buf.Grow(len(b))
	inSpace := false
	for _, r := range string(b) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			buf.WriteByte(' ')
			inSpace = false
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
