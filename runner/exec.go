package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/file"
	"github.com/procon-tools/go-procon/language"
	"github.com/procon-tools/go-procon/pkg/diff"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

func (r *Runner) exec(ctx context.Context, task *types.RunTask) *types.ExecResult {
	sc := &scratch{r: r}
	defer sc.release()

	var errs []string
	logger := r.logger().With(zap.String("case", task.CaseID))

	// input payload, an unreadable input runs with empty stdin
	input, inputPath, err := r.prepareInput(sc, task.Input)
	if err != nil {
		logger.Warn("input unavailable", zap.Error(err))
		errs = append(errs, err.Error())
	}

	// case unique output file
	var outputPath string
	if language.UsesOutput(task.RunCommand) {
		if outputPath, err = sc.path(nil); err != nil {
			logger.Warn("create output file", zap.Error(err))
			errs = append(errs, fmt.Sprintf("output: %v", err))
		}
	}

	command := language.Expand(task.RunCommand, language.Params{
		Source: task.Source,
		Input:  inputPath,
		Output: outputPath,
	})
	c := &envexec.Cmd{
		Command:      command,
		Shell:        true,
		Stdin:        input,
		TimeLimit:    r.timeLimit(task),
		OutputLimit:  r.outputLimit(),
		NewStoreFile: sc.New,
	}
	if task.Source != "" {
		c.Dir = filepath.Dir(task.Source)
	}
	s := &envexec.Single{Cmd: c}
	rt := s.Run(ctx)
	if rt.Error != "" {
		errs = append(errs, rt.Error)
	}

	result := &types.ExecResult{
		Status:     rt.Status,
		ExitStatus: rt.ExitStatus,
		Time:       rt.Time,
		Input:      input,
		UserOutput: rt.Stdout,
		UserError:  rt.Stderr,
	}

	// actual output is the output file if the command writes it
	if outputPath != "" {
		out, err := readLimited(outputPath, r.outputLimit())
		if err != nil {
			errs = append(errs, fmt.Sprintf("output: %v", err))
		}
		result.UserOutput = out
	}

	if task.Answer != nil {
		r.verify(logger, task.Answer, result, &errs)
	}
	result.Error = strings.Join(errs, "; ")
	if r.KeepArtifacts {
		result.Artifacts = r.keepArtifacts(logger, task, result)
	}
	return result
}

// Artifact name suffixes
const (
	ArtifactOutputSuffix = ".res.txt"
	ArtifactErrorSuffix  = ".err.txt"
)

// keepArtifacts adds the actual output and stderr of the case into the
// file store, empty stderr is skipped
func (r *Runner) keepArtifacts(logger *zap.Logger, task *types.RunTask, result *types.ExecResult) map[string]string {
	if r.Store == nil {
		return nil
	}
	kept := make(map[string]string)
	add := func(name string, content []byte) {
		id, err := r.Store.Add(name, content)
		if err != nil {
			logger.Warn("keep artifact", zap.String("name", name), zap.Error(err))
			return
		}
		kept[name] = id
	}
	prefix := task.CaseID
	if prefix == "" {
		prefix = "custom"
	}
	add(prefix+ArtifactOutputSuffix, result.UserOutput)
	if len(result.UserError) > 0 {
		add(prefix+ArtifactErrorSuffix, result.UserError)
	}
	return kept
}

// verify compares the actual output with the answer. Only a pending
// result is resolved.
func (r *Runner) verify(logger *zap.Logger, answer file.File, result *types.ExecResult, errs *[]string) {
	ans, err := answer.Content()
	if err != nil {
		// inconclusive: output cannot be confirmed without an answer
		logger.Warn("answer unavailable", zap.Error(err))
		*errs = append(*errs, fmt.Sprintf("answer: %v", err))
		if result.Status == envexec.StatusPending {
			result.Status = envexec.StatusWrongAnswer
		}
		return
	}
	result.Answer = ans
	result.Status = verify(result.Status, ans, result.UserOutput, errs)
}

func verify(status envexec.Status, answer, output []byte, errs *[]string) envexec.Status {
	if status != envexec.StatusPending {
		return status
	}
	if err := diff.Compare(bytes.NewReader(answer), bytes.NewReader(output)); err != nil {
		*errs = append(*errs, err.Error())
		return envexec.StatusWrongAnswer
	}
	return envexec.StatusAccepted
}

func (r *Runner) prepareInput(sc *scratch, f file.File) ([]byte, string, error) {
	if f == nil {
		p, err := sc.path(nil)
		return nil, p, err
	}
	input, err := f.Content()
	if err != nil {
		p, _ := sc.path(nil)
		return nil, p, fmt.Errorf("input: %w", err)
	}
	if l, ok := f.(file.Local); ok {
		return input, l.Path(), nil
	}
	p, err := sc.path(input)
	if err != nil {
		return input, "", fmt.Errorf("input: %w", err)
	}
	return input, p, nil
}

func (r *Runner) timeLimit(task *types.RunTask) time.Duration {
	switch {
	case task.TimeLimit > 0:
		return task.TimeLimit
	case r.TimeLimit > 0:
		return r.TimeLimit
	default:
		return DefaultTimeLimit
	}
}

func (r *Runner) outputLimit() envexec.Size {
	if r.OutputLimit > 0 {
		return r.OutputLimit
	}
	return DefaultOutputLimit
}

func readLimited(p string, limit envexec.Size) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, int64(limit)))
}
