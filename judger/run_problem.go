package judger

import (
	"context"

	"github.com/procon-tools/go-procon/client"
	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunProblem builds the source and runs it against every fixture,
// cases in the report are in fixture order
func (j *Judger) RunProblem(ctx context.Context, p types.ProblemTask) *types.JudgeResult {
	return j.run(ctx, p, nopProgress{})
}

// Loop fetch problem task from client and report results
// until ctx is done, a task is canceled when either ctx or
// the task context is done
func (j *Judger) Loop(ctx context.Context, c client.Client) {
	tc := c.C()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tc:
			j.loopTask(ctx, t)
		}
	}
}

func (j *Judger) loopTask(ctx context.Context, t client.Task) {
	tctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	t.Finished(j.run(tctx, *t.Param(), t))
}

func (j *Judger) run(ctx context.Context, p types.ProblemTask, pg progress) *types.JudgeResult {
	source := absPath(p.Source)
	logger := j.logger().With(zap.String("source", source))

	// builds of the same source never overlap
	unlock := j.locks.Lock(source)
	defer unlock()

	// compile
	msg, ok := j.compile(ctx, source, p.BuildCommand, p.CompileTimeLimit)
	if !ok {
		pg.Compiled(&types.ProgressCompiled{
			Status:  types.ProgressFailed,
			Message: msg,
		})
		logger.Info("compile error")
		return types.NewCompileErrorResult(msg)
	}
	pg.Compiled(&types.ProgressCompiled{
		Status: types.ProgressSucceeded,
	})

	// fixtures
	dir := p.FixturesDir
	if dir == "" {
		dir = problem.FixturesDir(source)
	}
	pConf, err := j.Build(absPath(dir))
	if err != nil {
		logger.Warn("fixtures unavailable", zap.String("dir", dir), zap.Error(err))
	}
	pg.Parsed(&pConf)

	// run all cases, results are stored by index
	result := &types.JudgeResult{
		Cases: make([]types.TestCaseResult, len(pConf.Cases)),
	}
	timeLimit := p.TimeLimit
	if timeLimit <= 0 {
		timeLimit = j.TimeLimit
	}

	var g errgroup.Group
	for i, c := range pConf.Cases {
		g.Go(func() error {
			ret := j.runCase(ctx, types.RunTask{
				Type:       types.RunTaskExec,
				Source:     source,
				CaseID:     c.ID,
				RunCommand: p.RunCommand,
				Input:      c.Input,
				Answer:     c.Answer,
				TimeLimit:  timeLimit,
			})
			result.Cases[i] = ret

			pg.Progressed(&types.ProgressProgressed{
				TestCaseIndex:  i,
				TestCaseResult: ret,
			})
			return nil
		})
	}
	g.Wait()

	result.Summarize()
	logger.Info("problem finished",
		zap.Stringer("status", result.Status),
		zap.Int("cases", len(result.Cases)),
		zap.Duration("time", result.Time))
	return result
}

func (j *Judger) runCase(ctx context.Context, task types.RunTask) types.TestCaseResult {
	rt, err := j.send(ctx, task)
	if err == nil && rt.Exec == nil {
		err = errNoResponse
	}
	if err != nil {
		return types.TestCaseResult{
			ID:         task.CaseID,
			Status:     envexec.StatusRuntimeError,
			ExitStatus: -1,
			Error:      err.Error(),
		}
	}
	return types.ExecToTestCaseResult(task.CaseID, rt.Exec)
}
