package language

import (
	"fmt"
	"maps"
	"os"

	"github.com/goccy/go-yaml"
)

// Default returns the built-in presets, build artifacts are named
// after the source so sources sharing a directory do not collide
func Default() Presets {
	return Presets{
		"C++": {
			Extension: "cpp",
			Build:     "g++ -O2 -o %D/%N %S",
			Run:       "%D/%N < %IN > %OUT",
		},
		"Go": {
			Extension: "go",
			Build:     "go build -o %D/%N %S",
			Run:       "%D/%N < %IN > %OUT",
		},
		"Python": {
			Extension: "py",
			Run:       "python3 %S < %IN > %OUT",
		},
	}
}

// Load reads presets from yaml file and merges them over the built-in
// ones. An empty path loads the built-in presets only.
//
//	Rust:
//	  extension: rs
//	  build: rustc -O -o %D/%N %S
//	  run: "%D/%N < %IN > %OUT"
func Load(path string) (Presets, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language config: %w", err)
	}
	return parse(p, d)
}

func parse(p Presets, d []byte) (Presets, error) {
	var m Presets
	if err := yaml.Unmarshal(d, &m); err != nil {
		return nil, fmt.Errorf("parse language config: %w", err)
	}
	for n, l := range m {
		if l.Run == "" {
			return nil, fmt.Errorf("language %q: run command is empty", n)
		}
	}
	maps.Copy(p, m)
	return p, nil
}
