// Command procon-judge builds a solution and grades it against the
// fixtures of its problem, or serves the same as a http api.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/procon-tools/go-procon/client/localclient"
	"github.com/procon-tools/go-procon/cmd/procon-judge/config"
	restexecutor "github.com/procon-tools/go-procon/cmd/procon-judge/rest_executor"
	"github.com/procon-tools/go-procon/cmd/procon-judge/version"
	"github.com/procon-tools/go-procon/envexec"
	wsexecutor "github.com/procon-tools/go-procon/cmd/procon-judge/ws_executor"
	"github.com/procon-tools/go-procon/filestore"
	"github.com/procon-tools/go-procon/judger"
	"github.com/procon-tools/go-procon/language"
	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/taskqueue/channel"
	"github.com/procon-tools/go-procon/types"
	"github.com/procon-tools/go-procon/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	if conf.Version {
		fmt.Println(version.Version)
		return
	}
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.DebugLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", conf)))
	}

	langs, err := language.Load(conf.LanguageConf)
	if err != nil {
		logger.Fatal("Load language presets failed", zap.Error(err))
	}

	if conf.Serve {
		serve(conf, langs)
		return
	}
	os.Exit(runOnce(conf, langs))
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

// runOnce grades a single source and prints the report, the exit code is
// 0 only when every case is accepted
func runOnce(conf *config.Config, langs language.Language) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build, run, err := commandTemplates(conf, langs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	source := conf.ResolveSource()
	if source == "" {
		fmt.Fprintln(os.Stderr, "no source provided")
		return 2
	}

	fs, fsCleanUp := newFileStore(ctx, conf)
	if fsCleanUp != nil {
		defer fsCleanUp()
	}
	q := channel.New()
	work := newWorker(conf, q, fs)
	work.Start()
	defer work.Shutdown()
	j := newJudger(conf, q)

	format := outputFormat(conf)
	if conf.Custom {
		stdin, err := readStdin(conf.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		rt := j.RunCustom(ctx, types.CustomTask{
			Source:           source,
			BuildCommand:     build,
			RunCommand:       run,
			Stdin:            stdin,
			TimeLimit:        conf.TimeLimit,
			CompileTimeLimit: conf.CompileTimeLimit,
		})
		printCustomResult(os.Stdout, format, rt)
		if rt.Status != envexec.StatusPending {
			return 1
		}
		return 0
	}

	rt := j.RunProblem(ctx, types.ProblemTask{
		Source:           source,
		BuildCommand:     build,
		RunCommand:       run,
		FixturesDir:      conf.Dir,
		TimeLimit:        conf.TimeLimit,
		CompileTimeLimit: conf.CompileTimeLimit,
	})
	printResult(os.Stdout, format, rt)
	if !rt.Accepted() {
		return 1
	}
	return 0
}

// commandTemplates returns build and run templates from the language
// preset with the overrides from config
func commandTemplates(conf *config.Config, langs language.Language) (string, string, error) {
	build, run := conf.Build, conf.Run
	if build != "" && run != "" {
		return build, run, nil
	}
	l, err := langs.Get(conf.Language)
	if err != nil {
		return "", "", fmt.Errorf("%w, available: %s", err, strings.Join(langs.Names(), ", "))
	}
	if err := l.CheckExtension(conf.Source); err != nil {
		return "", "", err
	}
	if build == "" {
		build = l.Build
	}
	if run == "" {
		run = l.Run
	}
	return build, run, nil
}

func readStdin(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stdin file: %w", err)
	}
	return b, nil
}

func serve(conf *config.Config, langs language.Language) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs, fsCleanUp := newFileStore(ctx, conf)
	q := channel.New()
	work := newWorker(conf, q, fs)
	work.Start()
	logger.Info("Worker started",
		zap.Int("parallelism", conf.Parallelism),
		zap.Duration("timeLimit", conf.TimeLimit))

	j := newJudger(conf, q)
	lc := localclient.New()
	for range conf.Parallelism {
		go j.Loop(ctx, lc)
	}

	servers := []initFunc{
		cleanUpWorker(work),
		cleanUpFs(fsCleanUp),
		initHTTPServer(conf, j, lc, fs, langs),
		initMonitorHTTPServer(conf),
	}

	// Gracefully shutdown, with signal / HTTP server / Monitor HTTP server
	sig := make(chan os.Signal, 1+len(servers))

	// worker and fs clean up func
	stops := []stopFunc{}
	for _, s := range servers {
		start, stop := s()
		if start != nil {
			go func() {
				start()
				sig <- os.Interrupt
			}()
		}
		if stop != nil {
			stops = append(stops, stop)
		}
	}

	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Shutting Down...")
	cancel()

	sctx, scancel := context.WithTimeout(context.TODO(), time.Second*3)
	defer scancel()

	var eg errgroup.Group
	for _, s := range stops {
		eg.Go(func() error {
			return s(sctx)
		})
	}

	go func() {
		logger.Info("Shutdown Finished", zap.Error(eg.Wait()))
		scancel()
	}()
	<-sctx.Done()
}

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func(), cleanUp stopFunc)
)

func cleanUpWorker(work worker.Worker) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		return nil, func(ctx context.Context) error {
			work.Shutdown()
			logger.Info("Worker shutdown")
			return nil
		}
	}
}

func cleanUpFs(fsCleanUp func() error) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		if fsCleanUp == nil {
			return nil, nil
		}
		return nil, func(ctx context.Context) error {
			err := fsCleanUp()
			logger.Info("FileStore cleaned up")
			return err
		}
	}
}

func initHTTPServer(conf *config.Config, j *judger.Judger, lc *localclient.Client, fs filestore.FileStore, langs language.Language) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		// Init http handle
		r := initHTTPMux(conf, j, lc, fs, langs)
		srv := http.Server{
			Addr:    conf.HTTPAddr,
			Handler: r,
		}

		return func() {
				logger.Info("Starting http server", zap.String("addr", conf.HTTPAddr))
				if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
					logger.Info("Http server stopped", zap.Error(err))
				} else {
					logger.Error("Http server stopped", zap.Error(err))
				}
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		// Init monitor HTTP server
		mr := initMonitorHTTPMux(conf)
		if mr == nil {
			return nil, nil
		}
		msrv := http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mr,
		}
		return func() {
				logger.Info("Starting monitoring http server", zap.String("addr", conf.MonitorAddr))
				logger.Info("Monitoring http server stopped", zap.Error(msrv.ListenAndServe()))
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
	if conf.LogFile != "" {
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, newFileCore(conf.LogFile))
		}))
	}
}

// newFileCore writes json logs into a rotated log file
func newFileCore(path string) zapcore.Core {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		zap.InfoLevel,
	)
}

func initHTTPMux(conf *config.Config, j *judger.Judger, lc *localclient.Client, fs filestore.FileStore, langs language.Language) http.Handler {
	var r *gin.Engine
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r = gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Metrics Handle
	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	// Version handle
	r.GET("/version", handleVersion)

	// Add auth token
	if conf.AuthToken != "" {
		r.Use(tokenAuth(conf.AuthToken))
		logger.Info("Attach token auth")
	}

	var srcPrefix []string
	if conf.Home != "" {
		srcPrefix = []string{conf.Home}
	}

	// Rest Handle
	runHandle := restexecutor.NewRunHandle(j, langs, srcPrefix, logger)
	runHandle.Register(r)

	// File Handle
	fileHandle := restexecutor.NewFileHandle(fs)
	fileHandle.Register(r)

	// WebSocket Handle
	wsHandle := wsexecutor.New(lc, langs, srcPrefix, logger)
	wsHandle.Register(r)

	return r
}

func initMonitorHTTPMux(conf *config.Config) http.Handler {
	if !conf.EnableMetrics && !conf.EnableDebug {
		return nil
	}
	mux := http.NewServeMux()
	if conf.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if conf.EnableDebug {
		initDebugRoute(mux)
	}
	return mux
}

func initDebugRoute(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"buildVersion": version.Version,
		"goVersion":    runtime.Version(),
		"platform":     runtime.GOARCH,
		"os":           runtime.GOOS,
	})
}

// newFileStore creates the scratch store, a temporary directory is used
// and removed on clean up when no scratch dir is configured
func newFileStore(ctx context.Context, conf *config.Config) (filestore.FileStore, func() error) {
	const timeoutCheckInterval = 15 * time.Second
	var cleanUp func() error

	dir := conf.ScratchDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "procon-judge")
		if err != nil {
			logger.Fatal("Failed to create scratch dir", zap.Error(err))
		}
		if !conf.KeepArtifacts {
			cleanUp = func() error {
				return os.RemoveAll(dir)
			}
		}
	}
	fs, err := filestore.NewFileLocalStore(filepath.Clean(dir))
	if err != nil {
		logger.Fatal("Failed to create file store", zap.Error(err))
	}
	if conf.EnableMetrics {
		fs = newMetricsFileStore(fs)
	}
	if conf.Serve && conf.KeepArtifacts && conf.FileTimeout > 0 {
		fs = filestore.NewTimeout(ctx, fs, conf.FileTimeout, timeoutCheckInterval)
	}
	logger.Debug("Scratch dir", zap.String("dir", dir))
	return fs, cleanUp
}

func newWorker(conf *config.Config, q *channel.Queue, fs filestore.FileStore) worker.Worker {
	wc := worker.Config{
		Queue:            q,
		FileStore:        fs,
		Parallelism:      conf.Parallelism,
		TimeLimit:        conf.TimeLimit,
		CompileTimeLimit: conf.CompileTimeLimit,
		KeepArtifacts:    conf.KeepArtifacts,
		Logger:           logger,
	}
	if conf.OutputLimit != nil {
		wc.OutputLimit = *conf.OutputLimit
	}
	if conf.EnableMetrics {
		wc.ExecObserver = execObserve
	}
	return worker.New(wc)
}

func newJudger(conf *config.Config, q *channel.Queue) *judger.Judger {
	return &judger.Judger{
		Sender:    q,
		Builder:   problem.DirBuilder{},
		Logger:    logger,
		TimeLimit: conf.TimeLimit,
	}
}
