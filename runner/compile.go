package runner

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/procon-tools/go-procon/language"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

func (r *Runner) compile(ctx context.Context, task *types.RunTask) *types.CompileResult {
	sc := &scratch{r: r}
	defer sc.release()

	command := language.Expand(task.BuildCommand, language.Params{Source: task.Source})
	opt := BuildOptions{
		TimeLimit:    r.compileTimeLimit(task),
		OutputLimit:  r.outputLimit(),
		NewStoreFile: sc.New,
	}
	if task.Source != "" {
		opt.Dir = filepath.Dir(task.Source)
	}

	start := time.Now()
	err := Build(ctx, command, opt)
	rt := &types.CompileResult{Time: time.Since(start)}
	if err == nil {
		return rt
	}

	var ce *CompileError
	if errors.As(err, &ce) {
		rt.Error = ce.Message
	} else {
		rt.Error = err.Error()
	}
	r.logger().Debug("compile failed", zap.String("source", task.Source), zap.String("command", command))
	return rt
}

func (r *Runner) compileTimeLimit(task *types.RunTask) time.Duration {
	switch {
	case task.CompileTimeLimit > 0:
		return task.CompileTimeLimit
	case r.CompileTimeLimit < 0:
		return 0
	case r.CompileTimeLimit == 0:
		return DefaultCompileTimeLimit
	default:
		return r.CompileTimeLimit
	}
}
