package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pype/internal/config"
	"github.com/askiada/go-pype/internal/stages"
	"github.com/askiada/go-pype/pkg/pype"
	"github.com/askiada/go-pype/pkg/pype/drawer"
	"github.com/askiada/go-pype/pkg/pype/measure"
	"github.com/askiada/go-pype/pkg/pype/model"
)

const commandUsage = `Options handled by the command itself:
  --file PATH     run every pipeline of a pipeline file
  --check         validate the pipelines without running them
  --config PATH   YAML configuration (default $PYPE_CONFIG)
  --dot PATH      write a Graphviz diagram of the last run
  --console       read pipelines from an interactive prompt`

var errMissingValue = errors.New("missing value")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, prompter: surveyPrompter{}}
	return a.run(ctx, args)
}

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	prompter prompter
}

// cliOptions are the options of the command, as opposed to those of a pipeline.
type cliOptions struct {
	file     string
	config   string
	dot      string
	check    bool
	console  bool
	pipeline []string
}

// parseCLI pulls the command options out of args. Everything else is the
// pipeline, so stage options may use any spelling without clashing.
func parseCLI(args []string) (cliOptions, error) {
	var opts cliOptions
	for i := 0; i < len(args); i++ {
		var target *string
		switch args[i] {
		case "--file":
			target = &opts.file
		case "--config":
			target = &opts.config
		case "--dot":
			target = &opts.dot
		case "--check":
			opts.check = true
			continue
		case "--console":
			opts.console = true
			continue
		default:
			opts.pipeline = append(opts.pipeline, args[i])
			continue
		}

		if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
			return cliOptions{}, errors.Wrap(errMissingValue, args[i])
		}
		i++
		*target = args[i]
	}
	return opts, nil
}

func (a *app) run(ctx context.Context, args []string) int {
	opts, err := parseCLI(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n%s\n", err, commandUsage)
		return 2
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 2
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	registry := pype.NewRegistry()
	if err := stages.Register(registry, a.stdout); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}

	exitCode := 0
	pipeOpts := []pype.Option{
		pype.WithOutput(a.stdout),
		pype.WithLogger(logger),
		pype.WithExitFunc(func(code int) { exitCode = code }),
		pype.NoAuto(cfg.NoAuto),
		pype.NoLog(cfg.NoLog),
		pype.CheckWorkers(cfg.CheckWorkers),
		pype.WithObservers(observers(opts, cfg)...),
	}

	switch {
	case opts.console:
		p, err := pype.New(registry, append(pipeOpts, pype.ExitOnError(false))...)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return 1
		}
		return a.console(ctx, p, logger)
	case opts.file != "" || opts.check:
		p, err := pype.New(registry, append(pipeOpts, pype.ExitOnError(cfg.ExitsOnError()))...)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return 1
		}
		return a.runFile(ctx, p, opts, cfg)
	case len(opts.pipeline) == 0:
		fmt.Fprintln(a.stdout, pype.RootUsage)
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, commandUsage)
		return 0
	}

	p, err := pype.New(registry, append(pipeOpts, pype.ExitOnError(true))...)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}
	if _, err := p.RunTokens(ctx, pype.TokenizeArgs(opts.pipeline)); err != nil {
		return max(exitCode, 1)
	}
	return 0
}

// runFile runs or checks the pipelines of --file, followed by the one given
// on the command line if any.
func (a *app) runFile(ctx context.Context, p *pype.Pipeline, opts cliOptions, cfg config.Config) int {
	var lines []string
	if opts.file != "" {
		var err error
		lines, err = pype.ReadPipelineFile(opts.file)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return 1
		}
	}
	if len(opts.pipeline) > 0 {
		lines = append(lines, pype.JoinTokens(opts.pipeline))
	}

	if opts.check {
		if err := p.Check(ctx, lines); err != nil {
			if usage := pype.Usage(err); usage != "" {
				fmt.Fprintln(a.stdout, usage)
			}
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(a.stdout, "%d pipeline(s) ok\n", len(lines))
		return 0
	}

	if cfg.ExitsOnError() {
		if _, err := p.RunLines(ctx, lines); err != nil {
			return 1
		}
		return 0
	}

	failed := 0
	for _, line := range lines {
		if _, err := p.RunString(ctx, line); err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(a.stderr, "%d of %d pipeline(s) failed\n", failed, len(lines))
		return 1
	}
	return 0
}

func observers(opts cliOptions, cfg config.Config) []model.PipelineOption {
	dot := opts.dot
	if dot == "" {
		dot = cfg.Dot
	}
	if dot == "" {
		return nil
	}

	var msr measure.Measure
	var out []model.PipelineOption
	if cfg.Measure {
		msr = measure.NewDefaultMeasure()
		out = append(out, measure.PipelineMeasure(msr))
	}
	return append(out, drawer.PipelineDrawer(drawer.NewDOTDrawer(dot), msr))
}
