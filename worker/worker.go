package worker

import (
	"context"
	"sync"
	"time"

	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/filestore"
	"github.com/procon-tools/go-procon/runner"
	"github.com/procon-tools/go-procon/taskqueue"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

// Config defines worker configuration
type Config struct {
	Queue            taskqueue.Receiver
	FileStore        filestore.FileStore
	Parallelism      int
	TimeLimit        time.Duration
	CompileTimeLimit time.Duration
	OutputLimit      envexec.Size
	KeepArtifacts    bool
	Logger           *zap.Logger
	ExecObserver     func(*types.RunTask, *types.ExecResult)
}

// Worker defines interface for the runner pool
type Worker interface {
	Start()
	Shutdown()
}

// worker runs parallelism number of runner loops over the queue
type worker struct {
	conf Config

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// New creates new worker
func New(conf Config) Worker {
	if conf.Parallelism <= 0 {
		conf.Parallelism = 1
	}
	if conf.Logger == nil {
		conf.Logger = zap.NewNop()
	}
	return &worker{conf: conf}
}

// Start starts worker loops with given parallelism
func (w *worker) Start() {
	w.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		w.wg.Add(w.conf.Parallelism)
		for i := 0; i < w.conf.Parallelism; i++ {
			r := &runner.Runner{
				Queue:            w.conf.Queue,
				Store:            w.conf.FileStore,
				Logger:           w.conf.Logger.With(zap.Int("runner", i)),
				TimeLimit:        w.conf.TimeLimit,
				CompileTimeLimit: w.conf.CompileTimeLimit,
				OutputLimit:      w.conf.OutputLimit,
				KeepArtifacts:    w.conf.KeepArtifacts,
				ExecObserver:     w.conf.ExecObserver,
			}
			go w.loop(ctx, r)
		}
		w.conf.Logger.Info("worker started", zap.Int("parallelism", w.conf.Parallelism))
	})
}

// Shutdown waits all worker to finish, a running task is finished
// by its own context
func (w *worker) Shutdown() {
	w.stopOnce.Do(func() {
		if w.cancel == nil {
			return
		}
		w.cancel()
		w.wg.Wait()
	})
}

func (w *worker) loop(ctx context.Context, r *runner.Runner) {
	defer w.wg.Done()
	r.Loop(ctx)
}
