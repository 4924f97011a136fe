// Package model defines the JSON representation of requests and
// reports served by procon-judge
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/language"
	"github.com/procon-tools/go-procon/types"
)

// Request defines a problem run, time limits are in milliseconds
type Request struct {
	Source   string  `json:"source"`
	Language string  `json:"language,omitempty"`
	Build    *string `json:"build,omitempty"` // override preset, empty string disables build
	Run      string  `json:"run,omitempty"`
	Dir      string  `json:"dir,omitempty"`

	TimeLimit        uint64 `json:"timeLimit,omitempty"`
	CompileTimeLimit uint64 `json:"compileTimeLimit,omitempty"`
}

// CustomRequest defines a single run with given stdin
type CustomRequest struct {
	Request
	Stdin string `json:"stdin"`
}

// Result is the JSON report of a problem run
type Result struct {
	Status       envexec.Status         `json:"status"`
	CompileError string                 `json:"compileError,omitempty"`
	Cases        []Case                 `json:"cases"`
	Summary      map[envexec.Status]int `json:"summary,omitempty"`
	Time         uint64                 `json:"time"`
}

// Case is the JSON result of a single test case
type Case struct {
	ID         string         `json:"id"`
	Status     envexec.Status `json:"status"`
	ExitStatus int            `json:"exitStatus"`
	Error      string         `json:"error,omitempty"`
	Time       uint64         `json:"time"`
	Input      string         `json:"input"`
	Answer     string         `json:"answer"`
	Stdout     string         `json:"stdout"`
	Stderr     string         `json:"stderr,omitempty"`

	Artifacts map[string]string `json:"artifacts,omitempty"` // name -> file id
}

// CustomResult is the JSON result of a custom run
type CustomResult struct {
	Status       envexec.Status `json:"status"`
	CompileError string         `json:"compileError,omitempty"`
	ExitStatus   int            `json:"exitStatus"`
	Error        string         `json:"error,omitempty"`
	Time         uint64         `json:"time"`
	Stdin        string         `json:"stdin"`
	Stdout       string         `json:"stdout"`
	Stderr       string         `json:"stderr,omitempty"`

	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// Progress types sent over websocket
const (
	ProgressParsed     = "parsed"
	ProgressCompiled   = "compiled"
	ProgressProgressed = "progressed"
	ProgressFinished   = "finished"
)

// Progress is a websocket message for the progress of a submitted request
type Progress struct {
	Type      string   `json:"type"`
	RequestID string   `json:"requestId"`
	Cases     []string `json:"cases,omitempty"`
	Succeeded *bool    `json:"succeeded,omitempty"`
	Message   string   `json:"message,omitempty"`
	Index     int      `json:"index"`
	Case      *Case    `json:"case,omitempty"`
	Result    *Result  `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// ConvertRequest converts json request into problem task, templates missing
// in the request are taken from the language preset
func ConvertRequest(r *Request, langs language.Language, srcPrefix []string) (types.ProblemTask, error) {
	if r.Source == "" {
		return types.ProblemTask{}, fmt.Errorf("no source provided")
	}
	if len(srcPrefix) != 0 {
		for _, p := range []string{r.Source, r.Dir} {
			if p == "" {
				continue
			}
			ok, err := CheckPathPrefixes(p, srcPrefix)
			if err != nil {
				return types.ProblemTask{}, err
			}
			if !ok {
				return types.ProblemTask{}, fmt.Errorf("file (%s) does not under (%s)", p, srcPrefix)
			}
		}
	}

	build, run := "", r.Run
	if r.Build != nil {
		build = *r.Build
	}
	if r.Build == nil || run == "" {
		name := r.Language
		if name == "" {
			name = language.DefaultLanguage
		}
		l, err := langs.Get(name)
		if err != nil {
			return types.ProblemTask{}, err
		}
		if err := l.CheckExtension(r.Source); err != nil {
			return types.ProblemTask{}, err
		}
		if r.Build == nil {
			build = l.Build
		}
		if run == "" {
			run = l.Run
		}
	}
	return types.ProblemTask{
		Source:           r.Source,
		BuildCommand:     build,
		RunCommand:       run,
		FixturesDir:      r.Dir,
		TimeLimit:        time.Duration(r.TimeLimit) * time.Millisecond,
		CompileTimeLimit: time.Duration(r.CompileTimeLimit) * time.Millisecond,
	}, nil
}

// ConvertCustomRequest converts json request into custom task
func ConvertCustomRequest(r *CustomRequest, langs language.Language, srcPrefix []string) (types.CustomTask, error) {
	p, err := ConvertRequest(&r.Request, langs, srcPrefix)
	if err != nil {
		return types.CustomTask{}, err
	}
	return types.CustomTask{
		Source:           p.Source,
		BuildCommand:     p.BuildCommand,
		RunCommand:       p.RunCommand,
		Stdin:            []byte(r.Stdin),
		TimeLimit:        p.TimeLimit,
		CompileTimeLimit: p.CompileTimeLimit,
	}, nil
}

// ConvertResult converts report into json result
func ConvertResult(r *types.JudgeResult) Result {
	ret := Result{
		Status:       r.Status,
		CompileError: r.CompileError,
		Cases:        make([]Case, 0, len(r.Cases)),
		Summary:      r.Summary,
		Time:         ms(r.Time),
	}
	for i := range r.Cases {
		ret.Cases = append(ret.Cases, ConvertCase(&r.Cases[i]))
	}
	return ret
}

// ConvertCase converts case result into json case
func ConvertCase(c *types.TestCaseResult) Case {
	return Case{
		ID:         c.ID,
		Status:     c.Status,
		ExitStatus: c.ExitStatus,
		Error:      c.Error,
		Time:       ms(c.Time),
		Input:      string(c.Input),
		Answer:     string(c.Answer),
		Stdout:     string(c.UserOutput),
		Stderr:     string(c.UserError),
		Artifacts:  c.Artifacts,
	}
}

// ConvertCustomResult converts custom run result into json result
func ConvertCustomResult(r *types.CustomResult) CustomResult {
	return CustomResult{
		Status:       r.Status,
		CompileError: r.CompileError,
		ExitStatus:   r.ExitStatus,
		Error:        r.Error,
		Time:         ms(r.Time),
		Stdin:        string(r.Stdin),
		Stdout:       string(r.Stdout),
		Stderr:       string(r.Stderr),
		Artifacts:    r.Artifacts,
	}
}

func ms(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d.Milliseconds())
}

// CheckPathPrefixes ensure path is allowed by prefixes
func CheckPathPrefixes(path string, prefixes []string) (bool, error) {
	for _, p := range prefixes {
		ok, err := checkPathPrefix(path, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func checkPathPrefix(path, prefix string) (bool, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return false, err
		}
		path = filepath.Join(wd, path)
	}
	rel, err := filepath.Rel(filepath.Clean(prefix), filepath.Clean(path))
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}
