package localclient

import (
	"context"
	"testing"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/types"
)

func TestSubmitAndWait(t *testing.T) {
	c := New()
	var compiled bool
	task, err := c.Submit(context.Background(), types.ProblemTask{Source: "main.go"}, Handler{
		Compiled: func(*types.ProgressCompiled) { compiled = true },
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == "" {
		t.Fatal("task id should be generated")
	}

	go func() {
		got := <-c.C()
		if got.Param().Source != "main.go" {
			panic("unexpected task")
		}
		got.Parsed(nil)
		got.Compiled(&types.ProgressCompiled{Status: types.ProgressSucceeded})
		got.Progressed(&types.ProgressProgressed{})
		got.Finished(&types.JudgeResult{Status: envexec.StatusAccepted})
	}()

	r, err := task.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !r.Accepted() || !compiled {
		t.Fatalf("unexpected result %+v compiled=%v", r, compiled)
	}
}

func TestTaskContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	task, err := c.Submit(ctx, types.ProblemTask{}, Handler{})
	if err != nil {
		t.Fatal(err)
	}
	got := <-c.C()
	if got.Context().Err() != nil {
		t.Fatal("task context should be alive")
	}
	cancel()
	if got.Context().Err() == nil || task.Context().Err() == nil {
		t.Fatal("task context should follow the submit context")
	}
}

func TestWaitCanceled(t *testing.T) {
	c := New()
	task, err := c.Submit(context.Background(), types.ProblemTask{}, Handler{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := task.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
