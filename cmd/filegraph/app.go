package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/filegraph/internal/config"
	"github.com/dusk-indust/filegraph/internal/logging"
	"github.com/dusk-indust/filegraph/internal/orchestrator"
	"github.com/dusk-indust/filegraph/internal/telemetry"
)

// skipSetup marks commands that need no project config.
const skipSetup = "skipSetup"

// app holds the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	logger   *slog.Logger
	cfg      *config.Config
	recorder *telemetry.Recorder
	shutdown func(context.Context) error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{v: viper.New(), stdout: stdout, stderr: stderr}
}

// execute runs the command line and then flushes traces and metrics, even
// when the command failed.
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close(context.WithoutCancel(ctx)))
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "filegraph",
		Short: "Map the reference graph of a project's documentation and scripts",
		Long: "filegraph indexes a project's context, skill, hook and script files, resolves the\n" +
			"references between them into a graph, reports files no entry point reaches, and\n" +
			"ranks files by centrality.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.String("project-dir", "", "project root (default: $CLAUDE_PROJECT_DIR or the working directory)")
	f.String("config", "", "config file (default: filegraph.yml in the project root)")
	f.String("output-dir", "", "output directory relative to the project root")
	f.String("log-format", "pretty", "log format: pretty, json or text")
	f.BoolP("verbose", "v", false, "enable debug logging")
	f.Bool("quiet", false, "do not print stage progress")
	f.String("trace-file", "", "write otel spans to this file")
	f.String("metrics-file", "", "write run metrics in prometheus textfile format")
	f.Int("workers", 0, "parallel file readers (default from config)")
	f.Bool("code-literals", false, "also extract path-like string literals from code files")
	_ = a.v.BindPFlags(f)

	// Env vars: FILEGRAPH_PROJECT_DIR, FILEGRAPH_LOG_FORMAT, etc.
	a.v.SetEnvPrefix("FILEGRAPH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.scanCmd(),
		a.analyzeCmd(),
		a.runCmd(),
		a.orphansCmd(),
		a.depsCmd(),
		a.impactCmd(),
		a.statusCmd(),
		a.initCmd(),
		a.serveMCPCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads .env, builds the logger, loads the project config and starts
// telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] != "" {
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	level := slog.LevelInfo
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger, err := logging.New(a.stderr, a.v.GetString("log-format"), level)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	dir, err := a.projectDir()
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.shutdown, err = telemetry.InitTracing(cmd.Context(), a.v.GetString("trace-file"), version)
	if err != nil {
		return err
	}
	if a.v.GetString("metrics-file") != "" {
		a.recorder = telemetry.NewRecorder()
	}
	a.logger.Debug("config loaded", "project_dir", cfg.ProjectDir, "output_dir", cfg.OutputDir)
	return nil
}

// projectDir resolves the project root: flag or FILEGRAPH_PROJECT_DIR, then
// CLAUDE_PROJECT_DIR, then the working directory.
func (a *app) projectDir() (string, error) {
	dir := a.v.GetString("project-dir")
	if dir == "" {
		dir = os.Getenv("CLAUDE_PROJECT_DIR")
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving project dir: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving project dir: %w", err)
	}
	return abs, nil
}

func (a *app) loadConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if file := a.v.GetString("config"); file != "" {
		cfg, err = config.LoadFile(dir, file)
	} else {
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, err
	}

	if out := a.v.GetString("output-dir"); out != "" {
		cfg.OutputDir = out
	}
	if n := a.v.GetInt("workers"); n > 0 {
		cfg.Workers = n
	}
	if a.v.GetBool("code-literals") {
		cfg.CodeLiterals = true
	}
	return cfg, cfg.Validate()
}

// close writes the metrics file and flushes traces.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.WriteTextfile(a.v.GetString("metrics-file")))
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}

// withPipeline runs fn against a fresh pipeline, printing progress events
// to stderr unless --quiet is set.
func (a *app) withPipeline(fn func(p *orchestrator.Pipeline) error) error {
	p := orchestrator.NewPipeline(a.cfg,
		orchestrator.WithLogger(a.logger),
		orchestrator.WithRecorder(a.recorder),
		orchestrator.WithVersion(version),
	)
	done := make(chan struct{})
	quiet := a.v.GetBool("quiet")
	go func() {
		defer close(done)
		for ev := range p.Progress() {
			if !quiet && ev.Status != orchestrator.ProgressWorking {
				fmt.Fprintln(a.stderr, orchestrator.FormatProgress(ev))
			}
		}
	}()

	err := fn(p)
	p.Close()
	<-done
	return err
}

// relPath shortens an output path for display.
func (a *app) relPath(p string) string {
	if rel, err := filepath.Rel(a.cfg.ProjectDir, p); err == nil {
		return rel
	}
	return p
}
