//go:build !windows

package envexec

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// processTree references a started process together with
// everything it spawns
type processTree interface {
	kill()    // kill terminates the whole tree, no-op if already exited
	release() // release frees the resources held for the tree
}

// processGroup uses the process group led by the started process
type processGroup struct {
	pgid int
}

func shellCommand(line string) *exec.Cmd {
	return exec.Command("/bin/sh", "-c", line)
}

func startProcessTree(cmd *exec.Cmd) (processTree, error) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processGroup{pgid: cmd.Process.Pid}, nil
}

func (p *processGroup) kill() {
	if p.pgid <= 0 {
		return
	}
	// ESRCH: every member has exited already
	_ = unix.Kill(-p.pgid, unix.SIGKILL)
}

func (p *processGroup) release() {}
