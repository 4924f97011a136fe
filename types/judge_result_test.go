package types

import (
	"testing"
	"time"

	"github.com/procon-tools/go-procon/envexec"
)

func TestSummarize(t *testing.T) {
	r := &JudgeResult{Cases: []TestCaseResult{
		{ID: "1", Status: envexec.StatusAccepted, Time: 10 * time.Millisecond},
		{ID: "2", Status: envexec.StatusTimeLimitExceeded, Time: 200 * time.Millisecond},
		{ID: "3", Status: envexec.StatusWrongAnswer, Time: 5 * time.Millisecond},
		{ID: "4", Status: envexec.StatusAccepted, Time: 5 * time.Millisecond},
	}}
	r.Summarize()
	if r.Status != envexec.StatusTimeLimitExceeded {
		t.Fatalf("expected first failing verdict, got %v", r.Status)
	}
	if r.Summary[envexec.StatusAccepted] != 2 || r.Summary[envexec.StatusWrongAnswer] != 1 {
		t.Fatalf("unexpected summary %v", r.Summary)
	}
	if r.Time != 220*time.Millisecond {
		t.Fatalf("unexpected total time %v", r.Time)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	r := &JudgeResult{}
	r.Summarize()
	if !r.Accepted() {
		t.Fatalf("empty report should be accepted, got %v", r.Status)
	}
}

func TestCompileErrorResult(t *testing.T) {
	r := NewCompileErrorResult("main.go:1: syntax error")
	r.Summarize()
	if r.Status != envexec.StatusCompileError || len(r.Cases) != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
}
