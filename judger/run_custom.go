package judger

import (
	"context"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/file"
	"github.com/procon-tools/go-procon/types"
)

// RunCustom builds the source and runs it once with the given stdin,
// the output is not verified
func (j *Judger) RunCustom(ctx context.Context, t types.CustomTask) *types.CustomResult {
	source := absPath(t.Source)

	unlock := j.locks.Lock(source)
	defer unlock()

	if msg, ok := j.compile(ctx, source, t.BuildCommand, t.CompileTimeLimit); !ok {
		return &types.CustomResult{
			Status:       envexec.StatusCompileError,
			CompileError: msg,
			Stdin:        t.Stdin,
		}
	}

	timeLimit := t.TimeLimit
	if timeLimit <= 0 {
		timeLimit = j.TimeLimit
	}
	ret := j.runCase(ctx, types.RunTask{
		Type:       types.RunTaskExec,
		Source:     source,
		CaseID:     "custom",
		RunCommand: t.RunCommand,
		Input:      file.NewMemFile("stdin", t.Stdin),
		TimeLimit:  timeLimit,
	})
	return &types.CustomResult{
		Status:     ret.Status,
		ExitStatus: ret.ExitStatus,
		Error:      ret.Error,
		Time:       ret.Time,
		Stdin:      t.Stdin,
		Stdout:     ret.UserOutput,
		Stderr:     ret.UserError,
		Artifacts:  ret.Artifacts,
	}
}
