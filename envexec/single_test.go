//go:build !windows

package envexec

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func runShell(t *testing.T, ctx context.Context, command string, stdin string, limit time.Duration) Result {
	t.Helper()
	s := &Single{Cmd: &Cmd{
		Command:   command,
		Shell:     true,
		Stdin:     []byte(stdin),
		TimeLimit: limit,
	}}
	return s.Run(ctx)
}

func TestSingleExitZero(t *testing.T) {
	rt := runShell(t, context.Background(), "echo hello", "", time.Second)
	if rt.Status != StatusPending {
		t.Fatalf("expected pending, got %v (%s)", rt.Status, rt.Error)
	}
	if rt.ExitStatus != 0 {
		t.Fatalf("expected exit status 0, got %d", rt.ExitStatus)
	}
	if got := string(rt.Stdout); got != "hello\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
}

func TestSingleNonZeroExit(t *testing.T) {
	rt := runShell(t, context.Background(), "echo oops >&2; exit 3", "", time.Second)
	if rt.Status != StatusRuntimeError {
		t.Fatalf("expected runtime error, got %v", rt.Status)
	}
	if rt.ExitStatus != 3 {
		t.Fatalf("expected exit status 3, got %d", rt.ExitStatus)
	}
	if got := string(rt.Stderr); got != "oops\n" {
		t.Fatalf("unexpected stderr %q", got)
	}
	if rt.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestSingleStdin(t *testing.T) {
	rt := runShell(t, context.Background(), "cat", "1 2\n3\n", time.Second)
	if rt.Status != StatusPending {
		t.Fatalf("expected pending, got %v (%s)", rt.Status, rt.Error)
	}
	if got := string(rt.Stdout); got != "1 2\n3\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if string(rt.Stdin) != "1 2\n3\n" {
		t.Fatalf("stdin not recorded: %q", rt.Stdin)
	}
}

func TestSingleNoShell(t *testing.T) {
	s := &Single{Cmd: &Cmd{
		Command:   `printf '%s' "a b"`,
		TimeLimit: time.Second,
	}}
	rt := s.Run(context.Background())
	if rt.Status != StatusPending {
		t.Fatalf("expected pending, got %v (%s)", rt.Status, rt.Error)
	}
	if got := string(rt.Stdout); got != "a b" {
		t.Fatalf("unexpected stdout %q", got)
	}
}

func TestSingleLaunchFailure(t *testing.T) {
	s := &Single{Cmd: &Cmd{
		Command:   "definitely-not-a-real-binary-4242",
		TimeLimit: time.Second,
	}}
	rt := s.Run(context.Background())
	if rt.Status != StatusRuntimeError {
		t.Fatalf("expected runtime error, got %v", rt.Status)
	}
	if rt.ExitStatus != -1 {
		t.Fatalf("expected exit status -1, got %d", rt.ExitStatus)
	}
	if !strings.Contains(rt.Error, "start") {
		t.Fatalf("unexpected error %q", rt.Error)
	}
}

func TestSingleEmptyCommand(t *testing.T) {
	s := &Single{Cmd: &Cmd{Command: "  "}}
	rt := s.Run(context.Background())
	if rt.Status != StatusRuntimeError || rt.Error != errEmptyCommand.Error() {
		t.Fatalf("unexpected result %v %q", rt.Status, rt.Error)
	}
}

func TestSingleTimeLimitKillsTree(t *testing.T) {
	start := time.Now()
	rt := runShell(t, context.Background(), "sleep 30 & echo $!; wait", "", 200*time.Millisecond)
	elapsed := time.Since(start)

	if rt.Status != StatusTimeLimitExceeded {
		t.Fatalf("expected time limit exceeded, got %v (%s)", rt.Status, rt.Error)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("run took %v, descendants kept it alive", elapsed)
	}
	if rt.Time < 200*time.Millisecond {
		t.Fatalf("expected time >= limit, got %v", rt.Time)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(rt.Stdout)))
	if err != nil {
		t.Fatalf("read child pid %q: %v", rt.Stdout, err)
	}
	// the orphaned child is reaped by init shortly after being killed
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := unix.Kill(pid, 0)
		if errors.Is(err, unix.ESRCH) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("descendant %d still alive", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSingleExitBeforeLimit(t *testing.T) {
	rt := runShell(t, context.Background(), "sleep 0.05", "", 2*time.Second)
	if rt.Status != StatusPending {
		t.Fatalf("expected pending, got %v (%s)", rt.Status, rt.Error)
	}
	if rt.Time >= 2*time.Second {
		t.Fatalf("unexpected time %v", rt.Time)
	}
}

func TestSingleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	rt := runShell(t, ctx, "sleep 30", "", 10*time.Second)
	if rt.Status != StatusRuntimeError {
		t.Fatalf("expected runtime error, got %v", rt.Status)
	}
	if !strings.Contains(rt.Error, context.Canceled.Error()) {
		t.Fatalf("unexpected error %q", rt.Error)
	}
}

func TestSingleOutputLimit(t *testing.T) {
	s := &Single{Cmd: &Cmd{
		Command:     "printf 0123456789",
		Shell:       true,
		TimeLimit:   time.Second,
		OutputLimit: 4,
	}}
	rt := s.Run(context.Background())
	if got := string(rt.Stdout); got != "0123" {
		t.Fatalf("unexpected stdout %q", got)
	}
}

func TestProcessGroupKillIdempotent(t *testing.T) {
	cmd := shellCommand("exit 0")
	tree, err := startProcessTree(cmd)
	if err != nil {
		t.Fatal(err)
	}
	defer tree.release()
	cmd.Wait()

	// killing an exited tree is a no-op, no matter how many times
	tree.kill()
	tree.kill()
}
