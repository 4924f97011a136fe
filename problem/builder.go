package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/procon-tools/go-procon/file"
)

// Builder builds problem specs from a fixtures directory
type Builder interface {
	Build(dir string) (Config, error)
}

// DirBuilder pairs <dir>/<id>.in.txt with <dir>/<id>.out.txt
type DirBuilder struct{}

var _ Builder = DirBuilder{}

// Build enumerates cases in dir. A directory with no input fixture
// builds an empty Config.
func (DirBuilder) Build(dir string) (Config, error) {
	ids, err := List(dir)
	if err != nil {
		return Config{}, err
	}
	cases := make([]Case, 0, len(ids))
	for _, id := range ids {
		cases = append(cases, Case{
			ID:     id,
			Input:  file.NewLocalFile(id+InputSuffix, filepath.Join(dir, id+InputSuffix)),
			Answer: file.NewLocalFile(id+AnswerSuffix, filepath.Join(dir, id+AnswerSuffix)),
		})
	}
	return Config{Dir: dir, Cases: cases}, nil
}

// List returns case identifiers in dir in judge order
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := strings.CutSuffix(e.Name(), InputSuffix)
		if !ok || id == "" {
			continue
		}
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids, nil
}

// Read returns input and expected output text for the case id
func Read(dir, id string) (input, answer []byte, err error) {
	input, err = os.ReadFile(filepath.Join(dir, id+InputSuffix))
	if err != nil {
		return nil, nil, fmt.Errorf("read input %s: %w", id, err)
	}
	answer, err = os.ReadFile(filepath.Join(dir, id+AnswerSuffix))
	if err != nil {
		return input, nil, fmt.Errorf("read answer %s: %w", id, err)
	}
	return input, answer, nil
}

// SortIDs sorts numeric ids numerically before the others, which are
// sorted lexicographically
func SortIDs(ids []string) {
	slices.SortStableFunc(ids, compareID)
}

func compareID(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// FixturesDir returns the fixtures directory convention for a task
// source, <task dir>/testcases
func FixturesDir(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), TestCasesDir)
}
