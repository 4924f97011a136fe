package language

import (
	"path/filepath"
	"strings"
)

// placeholders substituted verbatim in command templates
const (
	PlaceholderSource    = "%S"
	PlaceholderInput     = "%IN"
	PlaceholderOutput    = "%OUT"
	PlaceholderSourceDir = "%D"
	PlaceholderStem      = "%N"
)

// Params provides values of placeholders
type Params struct {
	Source string // source file path
	Input  string // case input path
	Output string // case output path
}

// Expand substitutes placeholders in template, no quoting is applied
func Expand(template string, p Params) string {
	dir, stem := "", ""
	if p.Source != "" {
		dir = filepath.Dir(p.Source)
		base := filepath.Base(p.Source)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	r := strings.NewReplacer(
		PlaceholderOutput, p.Output,
		PlaceholderInput, p.Input,
		PlaceholderSourceDir, dir,
		PlaceholderSource, p.Source,
		PlaceholderStem, stem,
	)
	return r.Replace(template)
}

// UsesOutput reports whether the template writes the output file
func UsesOutput(template string) bool {
	return strings.Contains(template, PlaceholderOutput)
}
