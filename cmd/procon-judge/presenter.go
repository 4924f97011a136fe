package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/procon-tools/go-procon/cmd/procon-judge/config"
	"github.com/procon-tools/go-procon/cmd/procon-judge/model"
	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/types"
	"golang.org/x/term"
)

var (
	cAccepted = color.New(color.FgGreen, color.Bold)
	cFailed   = color.New(color.FgRed, color.Bold)
	cTimeout  = color.New(color.FgYellow, color.Bold)
	cTitle    = color.New(color.FgCyan)
	cDim      = color.New(color.FgHiBlack)
)

// outputFormat returns the configured format, text when stdout is a
// terminal and json otherwise
func outputFormat(conf *config.Config) string {
	if conf.Format != "" {
		return conf.Format
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return config.FormatText
	}
	return config.FormatJSON
}

func statusColor(s envexec.Status) *color.Color {
	switch s {
	case envexec.StatusAccepted:
		return cAccepted
	case envexec.StatusTimeLimitExceeded:
		return cTimeout
	default:
		return cFailed
	}
}

func formatTime(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, format string, r *types.JudgeResult) error {
	if format == config.FormatJSON {
		return printJSON(w, model.ConvertResult(r))
	}
	if r.Status == envexec.StatusCompileError {
		cFailed.Fprintln(w, r.Status.String())
		fmt.Fprintln(w, r.CompileError)
		return nil
	}
	if len(r.Cases) == 0 {
		cDim.Fprintln(w, "no test cases found")
	}
	for i := range r.Cases {
		printCase(w, i+1, &r.Cases[i])
	}

	accepted := r.Summary[envexec.StatusAccepted]
	statusColor(r.Status).Fprintf(w, "%s", r.Status.String())
	fmt.Fprintf(w, " %d/%d (%s)\n", accepted, len(r.Cases), formatTime(r.Time))
	return nil
}

func printCase(w io.Writer, n int, c *types.TestCaseResult) {
	fmt.Fprintf(w, "#%d %s ", n, c.ID)
	statusColor(c.Status).Fprintf(w, "%-3s", c.Status.Short())
	cDim.Fprintf(w, " %s\n", formatTime(c.Time))
	if c.Status != envexec.StatusAccepted {
		printSection(w, "input", c.Input)
		printSection(w, "expected", c.Answer)
		printSection(w, "actual", c.UserOutput)
		printSection(w, "stderr", c.UserError)
		if c.Error != "" {
			printSection(w, "error", []byte(c.Error))
		}
	}
	printArtifacts(w, c.Artifacts)
}

func printArtifacts(w io.Writer, artifacts map[string]string) {
	if len(artifacts) == 0 {
		return
	}
	names := slices.Sorted(maps.Keys(artifacts))
	cTitle.Fprintln(w, "  artifacts:")
	for _, n := range names {
		fmt.Fprintf(w, "    %s %s\n", n, artifacts[n])
	}
}

func printSection(w io.Writer, title string, b []byte) {
	if len(b) == 0 {
		return
	}
	cTitle.Fprintf(w, "  %s:\n", title)
	for _, l := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", l)
	}
}

func printCustomResult(w io.Writer, format string, r *types.CustomResult) error {
	if format == config.FormatJSON {
		return printJSON(w, model.ConvertCustomResult(r))
	}
	if r.Status == envexec.StatusCompileError {
		cFailed.Fprintln(w, r.Status.String())
		fmt.Fprintln(w, r.CompileError)
		return nil
	}
	printSection(w, "stdout", r.Stdout)
	printSection(w, "stderr", r.Stderr)
	if r.Error != "" {
		printSection(w, "error", []byte(r.Error))
	}
	printArtifacts(w, r.Artifacts)
	// a custom run is never verified, pending means it exited normally
	if r.Status == envexec.StatusPending {
		cAccepted.Fprint(w, "OK")
	} else {
		statusColor(r.Status).Fprintf(w, "%s", r.Status.Short())
	}
	cDim.Fprintf(w, " %s exit %d\n", formatTime(r.Time), r.ExitStatus)
	return nil
}
