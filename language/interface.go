package language

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultLanguage is used when no language is configured
const DefaultLanguage = "Go"

// Language defines the way to build and run a program
type Language interface {
	Get(name string) (Preset, error) // Get preset for specific language
	Names() []string                 // Names lists the known language names
}

// Preset defines command templates to build / run a program.
// Templates are expanded by Expand before running.
type Preset struct {
	Extension string `yaml:"extension"`
	Build     string `yaml:"build"` // empty means no build step
	Run       string `yaml:"run"`
}

// Presets maps language name to its preset
type Presets map[string]Preset

var _ Language = Presets{}

// Get returns the preset of the language, names are case insensitive
func (p Presets) Get(name string) (Preset, error) {
	if l, ok := p[name]; ok {
		return l, nil
	}
	for n, l := range p {
		if strings.EqualFold(n, name) {
			return l, nil
		}
	}
	return Preset{}, fmt.Errorf("language %q not found", name)
}

// Names returns sorted language names
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// CheckExtension reports whether source has the extension of the preset
func (l Preset) CheckExtension(source string) error {
	if l.Extension == "" {
		return nil
	}
	ext := strings.TrimPrefix(filepath.Ext(source), ".")
	if ext != l.Extension {
		return fmt.Errorf("source %s does not have extension .%s", filepath.Base(source), l.Extension)
	}
	return nil
}
