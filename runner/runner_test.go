//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/file"
	"github.com/procon-tools/go-procon/filestore"
	"github.com/procon-tools/go-procon/taskqueue/channel"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap/zaptest"
)

const sumScript = "read a b\necho $((a + b))\n"

func newRunner(t *testing.T) (*Runner, filestore.FileStore) {
	t.Helper()
	fs, err := filestore.NewFileLocalStore(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}
	return &Runner{
		Store:  fs,
		Logger: zaptest.NewLogger(t),
	}, fs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildEmpty(t *testing.T) {
	if err := Build(context.Background(), "   ", BuildOptions{}); err != nil {
		t.Fatalf("empty build should succeed, got %v", err)
	}
}

func TestBuildFailed(t *testing.T) {
	err := Build(context.Background(), "false", BuildOptions{TimeLimit: time.Second})
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}

	err = Build(context.Background(), "echo 'main.go:3: undefined: x' >&2; exit 2", BuildOptions{TimeLimit: time.Second})
	if !errors.As(err, &ce) || !strings.Contains(ce.Message, "undefined: x") {
		t.Fatalf("expected diagnostic in message, got %v", err)
	}
}

func TestBuildTimeout(t *testing.T) {
	err := Build(context.Background(), "sleep 10", BuildOptions{TimeLimit: 100 * time.Millisecond})
	var ce *CompileError
	if !errors.As(err, &ce) || !strings.Contains(ce.Message, "time limit") {
		t.Fatalf("expected compile timeout, got %v", err)
	}
}

func TestBuildOK(t *testing.T) {
	dir := t.TempDir()
	err := Build(context.Background(), "touch built", BuildOptions{Dir: dir, TimeLimit: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "built")); err != nil {
		t.Fatalf("artifact not produced: %v", err)
	}
}

func TestCompileTask(t *testing.T) {
	r, _ := newRunner(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "main.sh", sumScript)

	rt := r.run(context.Background(), &types.RunTask{
		Type:         types.RunTaskCompile,
		Source:       src,
		BuildCommand: "test -f %S",
	})
	if rt.Compile == nil || rt.Compile.Error != "" {
		t.Fatalf("unexpected compile result %+v", rt.Compile)
	}

	rt = r.run(context.Background(), &types.RunTask{
		Type:         types.RunTaskCompile,
		Source:       src,
		BuildCommand: "test -f %D/missing.sh",
	})
	if rt.Compile == nil || rt.Compile.Error == "" {
		t.Fatalf("expected compile error, got %+v", rt.Compile)
	}
}

func TestCompileTimeLimit(t *testing.T) {
	tests := []struct {
		runner time.Duration
		task   time.Duration
		want   time.Duration
	}{
		{0, 0, DefaultCompileTimeLimit},
		{-1, 0, 0},
		{5 * time.Second, 0, 5 * time.Second},
		{5 * time.Second, 100 * time.Millisecond, 100 * time.Millisecond},
		{-1, time.Second, time.Second},
	}
	for _, tc := range tests {
		r := &Runner{CompileTimeLimit: tc.runner}
		if got := r.compileTimeLimit(&types.RunTask{CompileTimeLimit: tc.task}); got != tc.want {
			t.Errorf("compileTimeLimit(%v, %v) = %v, want %v", tc.runner, tc.task, got, tc.want)
		}
	}
}

func execCase(t *testing.T, r *Runner, run, in, out string, limit time.Duration) *types.ExecResult {
	t.Helper()
	dir := t.TempDir()
	src := writeFile(t, dir, "main.sh", sumScript)
	task := &types.RunTask{
		Type:       types.RunTaskExec,
		Source:     src,
		CaseID:     "1",
		RunCommand: run,
		TimeLimit:  limit,
		Input:      file.NewLocalFile("1.in.txt", writeFile(t, dir, "1.in.txt", in)),
		Answer:     file.NewLocalFile("1.out.txt", writeFile(t, dir, "1.out.txt", out)),
	}
	rt := r.run(context.Background(), task)
	if rt.Exec == nil {
		t.Fatal("missing exec result")
	}
	return rt.Exec
}

func TestExecAccepted(t *testing.T) {
	r, fs := newRunner(t)

	rt := execCase(t, r, "sh %S < %IN > %OUT", "3 5", "8", time.Second)
	if rt.Status != envexec.StatusAccepted {
		t.Fatalf("expected accepted, got %v (%s)", rt.Status, rt.Error)
	}
	if string(rt.UserOutput) != "8\n" || string(rt.Input) != "3 5" || string(rt.Answer) != "8" {
		t.Fatalf("unexpected result %+v", rt)
	}
	if n := len(fs.List()); n != 0 {
		t.Fatalf("scratch files left: %d", n)
	}
}

func TestExecKeepArtifacts(t *testing.T) {
	r, fs := newRunner(t)
	r.KeepArtifacts = true

	rt := execCase(t, r, "echo warn >&2; sh %S < %IN > %OUT", "3 5", "8", time.Second)
	if rt.Status != envexec.StatusAccepted {
		t.Fatalf("expected accepted, got %v (%s)", rt.Status, rt.Error)
	}
	want := map[string]string{
		"1" + ArtifactOutputSuffix: "8\n",
		"1" + ArtifactErrorSuffix:  "warn\n",
	}
	if len(rt.Artifacts) != len(want) {
		t.Fatalf("unexpected artifacts %v", rt.Artifacts)
	}
	for name, content := range want {
		gotName, f := fs.Get(rt.Artifacts[name])
		if f == nil || gotName != name {
			t.Fatalf("artifact %s: %q %v", name, gotName, f)
		}
		c, err := f.Content()
		if err != nil || string(c) != content {
			t.Fatalf("artifact %s content %q, %v", name, c, err)
		}
	}
	// only the kept artifacts stay, scratch files are released
	if n := len(fs.List()); n != len(want) {
		t.Fatalf("expected %d files in store, got %d", len(want), n)
	}
}

func TestExecStdout(t *testing.T) {
	r, _ := newRunner(t)

	// trailing blank lines in answer are tolerated
	rt := execCase(t, r, "sh %S", "3 5", "8\n\n\n", time.Second)
	if rt.Status != envexec.StatusAccepted {
		t.Fatalf("expected accepted, got %v (%s)", rt.Status, rt.Error)
	}
}

func TestExecWrongAnswer(t *testing.T) {
	r, _ := newRunner(t)

	rt := execCase(t, r, "sh %S", "3 5", "9", time.Second)
	if rt.Status != envexec.StatusWrongAnswer {
		t.Fatalf("expected wrong answer, got %v", rt.Status)
	}
	if !strings.Contains(rt.Error, "expected: 9") {
		t.Fatalf("expected diff message, got %q", rt.Error)
	}
}

func TestExecRuntimeErrorSkipsVerify(t *testing.T) {
	r, _ := newRunner(t)

	rt := execCase(t, r, "echo 8; exit 1", "3 5", "8", time.Second)
	if rt.Status != envexec.StatusRuntimeError {
		t.Fatalf("expected runtime error, got %v", rt.Status)
	}
	if rt.ExitStatus != 1 {
		t.Fatalf("expected exit status 1, got %d", rt.ExitStatus)
	}
}

func TestExecTimeLimitExceeded(t *testing.T) {
	r, _ := newRunner(t)

	start := time.Now()
	rt := execCase(t, r, "cat > /dev/null; while :; do :; done", "3 5", "8", 200*time.Millisecond)
	if rt.Status != envexec.StatusTimeLimitExceeded {
		t.Fatalf("expected time limit exceeded, got %v (%s)", rt.Status, rt.Error)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("took %v", elapsed)
	}
}

func TestExecMissingAnswer(t *testing.T) {
	r, _ := newRunner(t)
	dir := t.TempDir()
	rt := r.exec(context.Background(), &types.RunTask{
		Type:       types.RunTaskExec,
		CaseID:     "2",
		RunCommand: "cat",
		Input:      file.NewMemFile("2.in.txt", []byte("x")),
		Answer:     file.NewLocalFile("2.out.txt", filepath.Join(dir, "2.out.txt")),
		TimeLimit:  time.Second,
	})
	if rt.Status != envexec.StatusWrongAnswer {
		t.Fatalf("expected wrong answer, got %v", rt.Status)
	}
	if !strings.Contains(rt.Error, "answer") {
		t.Fatalf("expected answer error, got %q", rt.Error)
	}
	if string(rt.UserOutput) != "x" {
		t.Fatalf("case should still run, got %q", rt.UserOutput)
	}
}

func TestExecMissingInput(t *testing.T) {
	r, _ := newRunner(t)
	dir := t.TempDir()
	rt := r.exec(context.Background(), &types.RunTask{
		Type:       types.RunTaskExec,
		CaseID:     "3",
		RunCommand: "cat < %IN",
		Input:      file.NewLocalFile("3.in.txt", filepath.Join(dir, "3.in.txt")),
		TimeLimit:  time.Second,
	})
	if rt.Status != envexec.StatusPending {
		t.Fatalf("expected pending without answer, got %v (%s)", rt.Status, rt.Error)
	}
	if !strings.Contains(rt.Error, "input") || len(rt.UserOutput) != 0 {
		t.Fatalf("unexpected result %+v", rt)
	}
}

func TestVerifyKeepsTerminalStatus(t *testing.T) {
	var errs []string
	for _, s := range []envexec.Status{envexec.StatusRuntimeError, envexec.StatusTimeLimitExceeded} {
		if got := verify(s, []byte("1"), []byte("1"), &errs); got != s {
			t.Fatalf("verify downgraded %v to %v", s, got)
		}
	}
	if got := verify(envexec.StatusPending, []byte("1\r\n"), []byte("1"), &errs); got != envexec.StatusAccepted {
		t.Fatalf("expected accepted, got %v", got)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestLoop(t *testing.T) {
	r, _ := newRunner(t)
	q := channel.New()
	r.Queue = q

	var observed int
	r.ExecObserver = func(*types.RunTask, *types.ExecResult) { observed++ }

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- r.Loop(ctx) }()

	rtC := make(chan types.RunTaskResult, 1)
	err := q.Send(ctx, types.RunTask{
		Type:       types.RunTaskExec,
		RunCommand: "cat",
		Input:      file.NewMemFile("in", []byte("1 2\n")),
		Answer:     file.NewMemFile("out", []byte("1  2")),
	}, rtC)
	if err != nil {
		t.Fatal(err)
	}
	rt := <-rtC
	if rt.Exec == nil || rt.Exec.Status != envexec.StatusAccepted {
		t.Fatalf("unexpected result %+v", rt.Exec)
	}

	cancel()
	if err := <-errC; !errors.Is(err, context.Canceled) {
		t.Fatalf("loop returned %v", err)
	}
	if observed != 1 {
		t.Fatalf("expected 1 observation, got %d", observed)
	}
}
