package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/koding/multiconfig"
	"github.com/procon-tools/go-procon/envexec"
	"github.com/procon-tools/go-procon/language"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config defines procon-judge configuration
type Config struct {
	// task
	Source       string `flagUsage:"source file to test"`
	Home         string `flagUsage:"contests home, relative sources are looked up here when missing in working dir" default:"~/contests"`
	Language     string `flagUsage:"language preset of the source" default:"Go"`
	LanguageConf string `flagUsage:"yaml file overriding / adding language presets"`
	Build        string `flagUsage:"build command template, overrides the language preset"`
	Run          string `flagUsage:"run command template, overrides the language preset"`
	Dir          string `flagUsage:"fixtures directory (default <source dir>/testcases)"`
	Custom       bool   `flagUsage:"run once with custom stdin instead of fixtures"`
	Stdin        string `flagUsage:"stdin file for custom run (default standard input)"`
	Format       string `flagUsage:"output format text / json (default text on terminal, json otherwise)"`

	// runner
	TimeLimit        time.Duration `flagUsage:"time limit for each case" default:"3s"`
	CompileTimeLimit time.Duration `flagUsage:"time limit for build command (negative for unlimited)" default:"30s"`
	OutputLimit      *envexec.Size `flagUsage:"max output collected for each run" default:"64m"`
	Parallelism      int           `flagUsage:"control the # of cases running concurrently" default:"1"`
	ScratchDir       string        `flagUsage:"directory to store scratch files (default temp dir)"`
	KeepArtifacts    bool          `flagUsage:"keep scratch files after run"`

	// server config
	Serve         bool          `flagUsage:"start http server instead of running a single source"`
	HTTPAddr      string        `flagUsage:"specifies the http binding address" default:":5050"`
	MonitorAddr   string        `flagUsage:"specifies the metrics binding address" default:":5052"`
	AuthToken     string        `flagUsage:"bearer token auth for REST"`
	EnableDebug   bool          `flagUsage:"enable debug endpoint"`
	EnableMetrics bool          `flagUsage:"enable promethus metrics endpoint"`
	FileTimeout   time.Duration `flagUsage:"specified timeout for scratch files kept in serve mode" default:"10m"`

	// logger config
	Release bool   `flagUsage:"release level of logs"`
	Silent  bool   `flagUsage:"do not print logs"`
	LogFile string `flagUsage:"write logs to file with rotation"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "PROCON",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "PROCON",
		},
	)
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	if c.Language == "" {
		c.Language = language.DefaultLanguage
	}
	c.Home = ExpandHome(c.Home)
	return nil
}

// ExpandHome replaces the leading ~ with the user home directory
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ResolveSource returns the source path, a relative source missing in
// the working directory is resolved against the contests home
func (c *Config) ResolveSource() string {
	if c.Source == "" || filepath.IsAbs(c.Source) || c.Home == "" {
		return c.Source
	}
	if _, err := os.Stat(c.Source); err == nil {
		return c.Source
	}
	p := filepath.Join(c.Home, c.Source)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return c.Source
}
