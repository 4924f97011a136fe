//go:build windows

package envexec

import (
	"fmt"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processTree references a started process together with
// everything it spawns
type processTree interface {
	kill()    // kill terminates the whole tree, no-op if already exited
	release() // release frees the resources held for the tree
}

// jobObject places the started process inside a job so that all of
// its descendants could be terminated at once
type jobObject struct {
	hJob windows.Handle
	cmd  *exec.Cmd
}

func shellCommand(line string) *exec.Cmd {
	cmd := exec.Command("cmd.exe")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: `cmd.exe /S /C "` + line + `"`,
	}
	return cmd
}

func createJobObject() (windows.Handle, error) {
	hJob, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, err
	}

	var limit windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION
	limit.BasicLimitInformation.LimitFlags |= windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
	_, err = windows.SetInformationJobObject(hJob, windows.JobObjectExtendedLimitInformation, uintptr(unsafe.Pointer(&limit)), uint32(unsafe.Sizeof(limit)))
	if err != nil {
		windows.CloseHandle(hJob)
		return 0, err
	}
	return hJob, nil
}

func startProcessTree(cmd *exec.Cmd) (processTree, error) {
	hJob, err := createJobObject()
	if err != nil {
		return nil, fmt.Errorf("create job object: %w", err)
	}
	if err := cmd.Start(); err != nil {
		windows.CloseHandle(hJob)
		return nil, err
	}
	j := &jobObject{hJob: hJob, cmd: cmd}

	hProcess, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(cmd.Process.Pid))
	if err != nil {
		j.kill()
		j.release()
		return nil, fmt.Errorf("open process: %w", err)
	}
	defer windows.CloseHandle(hProcess)

	if err := windows.AssignProcessToJobObject(hJob, hProcess); err != nil {
		j.kill()
		j.release()
		return nil, fmt.Errorf("assign job object: %w", err)
	}
	return j, nil
}

func (j *jobObject) kill() {
	windows.TerminateJobObject(j.hJob, 1)
	// the root process may not be in the job if assignment failed
	j.cmd.Process.Kill()
}

func (j *jobObject) release() {
	windows.CloseHandle(j.hJob)
}
