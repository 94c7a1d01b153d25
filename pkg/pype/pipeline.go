package pype

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// Status is the terminal state of a run.
type Status int

const (
	StatusInit Status = iota
	StatusDone
	StatusFailed
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return "init"
	}
}

// Run is the record of one pipeline invocation.
type Run struct {
	ID     uuid.UUID
	Spec   model.PipelineSpec
	Status Status
	State  *State
	Err    error
	// Reason says why an aborted run stopped: help, doc, html, query or usage.
	Reason string
}

func newRun(spec model.PipelineSpec) *Run {
	return &Run{ID: uuid.New(), Spec: spec, State: NewState()}
}

// GetScriptObject returns the stage registered as name-id during the run.
func (r *Run) GetScriptObject(name, id string) (*Script, error) {
	return r.State.GetScriptObject(name, id)
}

// Pipeline parses and runs pipelines against a registry of stages.
type Pipeline struct {
	registry     *Registry
	out          io.Writer
	logger       *slog.Logger
	exitOnError  bool
	exit         func(code int)
	session      *Session
	observers    []model.PipelineOption
	noAuto       bool
	noLog        bool
	checkWorkers int
}

// New creates a pipeline runner. By default errors terminate the process,
// text goes to stdout and logs to the default slog logger.
func New(registry *Registry, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryMustBeSet
	}

	p := &Pipeline{
		registry:     registry,
		out:          os.Stdout,
		logger:       slog.Default(),
		exitOnError:  true,
		exit:         os.Exit,
		session:      NewSession(),
		checkWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// GetUsageString returns the usage of the pipeline itself.
func (p *Pipeline) GetUsageString() string {
	return NewRootScript().GetUsageString()
}

// RunString tokenizes line and runs it.
func (p *Pipeline) RunString(ctx context.Context, line string) (*Run, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		run := newRun(model.PipelineSpec{})
		return run, p.settle(run, Fail(err))
	}
	return p.RunTokens(ctx, tokens)
}

// RunTokens parses tokens and runs the resulting pipeline.
func (p *Pipeline) RunTokens(ctx context.Context, tokens []string) (*Run, error) {
	spec, err := ParsePipeline(tokens)
	if err != nil {
		run := newRun(model.PipelineSpec{})
		return run, p.settle(run, Fail(err))
	}
	return p.Run(ctx, spec)
}

// RunFile runs every pipeline of a pipeline file in turn, stopping at the first failure.
func (p *Pipeline) RunFile(ctx context.Context, path string) ([]*Run, error) {
	lines, err := ReadPipelineFile(path)
	if err != nil {
		return nil, err
	}
	return p.RunLines(ctx, lines)
}

// RunLines runs independent pipelines in order, stopping at the first failure.
func (p *Pipeline) RunLines(ctx context.Context, lines []string) ([]*Run, error) {
	runs := make([]*Run, 0, len(lines))
	for idx, line := range lines {
		run, err := p.RunString(ctx, line)
		runs = append(runs, run)
		if err != nil {
			return runs, errors.Wrapf(err, "pipeline %d", idx+1)
		}
	}
	return runs, nil
}

// Run executes a parsed pipeline. The returned run is never nil.
func (p *Pipeline) Run(ctx context.Context, spec model.PipelineSpec) (*Run, error) {
	run := newRun(spec)
	ex := &execution{
		p:      p,
		run:    run,
		logger: p.runLogger(run),
		noLog:  p.noLog || spec.GlobalFlags.NoLog,
		resolver: &Resolver{
			State:  run.State,
			NoAuto: p.noAuto || spec.GlobalFlags.NoAuto,
		},
	}

	return run, p.settle(run, ex.execute(ctx))
}

// Check validates pipelines without running them: quoting, grammar, stage
// names and every stage option. Pipelines are checked concurrently.
func (p *Pipeline) Check(ctx context.Context, lines []string) error {
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(p.checkWorkers)
	for idx, line := range lines {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			if err := p.checkLine(line); err != nil {
				return errors.Wrapf(err, "pipeline %d", idx+1)
			}
			return nil
		})
	}
	return grp.Wait()
}

func (p *Pipeline) checkLine(line string) error {
	tokens, err := Tokenize(line)
	if err != nil {
		return err
	}
	spec, err := ParsePipeline(tokens)
	if err != nil {
		return err
	}
	for _, stage := range spec.Stages {
		script, err := p.registry.Lookup(stage.ScriptName)
		if err != nil {
			return err
		}
		script.LogOn = false
		if err := script.ParseArguments(stage); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runLogger(run *Run) *slog.Logger {
	if p.noLog || run.Spec.GlobalFlags.NoLog {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger.With("run", run.ID.String())
}

// settle moves the run to its terminal state and applies the error policy.
func (p *Pipeline) settle(run *Run, outcome StageOutcome) error {
	switch {
	case outcome.IsHalt():
		run.Status = StatusAborted
		run.Reason = outcome.Reason()
		return nil
	case outcome.IsContinue():
		for _, opt := range p.observers {
			if err := opt.Finish(); err != nil {
				return p.fail(run, errors.Wrap(err, "unable to finish pipeline option"))
			}
		}
		run.Status = StatusDone
		return nil
	default:
		return p.fail(run, outcome.Err())
	}
}

func (p *Pipeline) fail(run *Run, err error) error {
	run.Status = StatusFailed
	run.Err = err

	p.report(err)
	if p.exitOnError {
		p.exit(1)
	}
	return err
}

func (p *Pipeline) report(err error) {
	if p.out == nil {
		return
	}
	if usage := Usage(err); usage != "" {
		fmt.Fprintln(p.out, usage)
	}
	fmt.Fprintf(p.out, "error: %v\n", err)
}

type execution struct {
	p        *Pipeline
	run      *Run
	logger   *slog.Logger
	noLog    bool
	resolver *Resolver
}

func (ex *execution) execute(ctx context.Context) StageOutcome {
	spec := ex.run.Spec
	if len(spec.Stages) == 0 {
		if spec.Halting() {
			ex.write(RootUsage)
			return Halt("usage")
		}
		err := newStageError(ErrUsage, "", "", "no stage given")
		err.Usage = RootUsage
		return Fail(err)
	}
	if spec.Halting() {
		return ex.halt()
	}

	for _, opt := range ex.p.observers {
		if err := opt.New(); err != nil {
			return Fail(errors.Wrap(err, "unable to apply pipeline option"))
		}
	}

	for idx, stage := range spec.Stages {
		if outcome := ex.stage(ctx, idx, stage); !outcome.IsContinue() {
			return outcome
		}
	}

	return Continue()
}

// halt serves --query, --help, --doc and --html. No stage body runs: every
// stage up to the requesting one is looked up so unknown names still fail.
func (ex *execution) halt() StageOutcome {
	spec := ex.run.Spec
	stages := spec.Stages
	if !spec.GlobalFlags.Query && !hasRequest(stages) {
		first := stages[0]
		first.Request = flagRequest(spec.GlobalFlags)
		stages = append([]model.StageSpec{first}, stages[1:]...)
	}

	for _, stage := range stages {
		script, err := ex.p.registry.Lookup(stage.ScriptName)
		if err != nil {
			return Fail(err)
		}
		if spec.GlobalFlags.Query {
			ex.write(script.Usage())
			continue
		}
		switch stage.Request {
		case model.RequestHelp:
			ex.write(script.Usage())
			return Halt("help")
		case model.RequestDoc:
			ex.write(script.DocString())
			return Halt("doc")
		case model.RequestHTML:
			ex.write(script.HTML())
			return Halt("html")
		}
	}

	return Halt("query")
}

func hasRequest(stages []model.StageSpec) bool {
	for _, stage := range stages {
		if stage.Request != model.RequestNone {
			return true
		}
	}
	return false
}

func flagRequest(flags model.GlobalFlags) model.Request {
	switch {
	case flags.Help:
		return model.RequestHelp
	case flags.Doc:
		return model.RequestDoc
	default:
		return model.RequestHTML
	}
}

func (ex *execution) stage(ctx context.Context, idx int, spec model.StageSpec) StageOutcome {
	if err := ctx.Err(); err != nil {
		stageErr := newStageError(ErrExecution, spec.ScriptName, "", "pipeline cancelled")
		stageErr.cause = err
		return Fail(stageErr)
	}

	script, err := ex.p.registry.Lookup(spec.ScriptName)
	if err != nil {
		return Fail(err)
	}
	script.index = idx
	script.LogOn = !ex.noLog
	script.ExitOnError = ex.p.exitOnError
	script.Session = ex.p.session
	script.logger = ex.logger.With("stage", script.Name)

	if err := script.ParseArguments(spec); err != nil {
		return Fail(err)
	}

	if script.Disabled {
		return ex.skip(script)
	}

	edges, err := ex.resolver.Resolve(script)
	if err != nil {
		return Fail(err)
	}
	// a piped -disabled value only takes effect here
	if script.Disabled {
		return ex.skip(script)
	}
	if err := ex.prepare(script); err != nil {
		return Fail(err)
	}

	script.logger.Info("executing stage", "id", script.Id)
	start := time.Now()
	if err := script.Execute(ctx); err != nil {
		return Fail(err)
	}
	duration := time.Since(start)
	script.logger.Info("stage done", "id", script.Id, "duration", duration)

	if err := ex.run.State.Register(script); err != nil {
		return Fail(err)
	}
	for _, edge := range edges {
		if err := ex.run.State.AddPipe(edge.Source, script, edge.Pipe); err != nil {
			return Fail(err)
		}
		for _, opt := range ex.p.observers {
			if err := opt.OnPipe(edge.Source.info(), script.info(), edge.Pipe); err != nil {
				return Fail(errors.Wrap(err, "unable to run pipe function"))
			}
		}
	}
	for _, opt := range ex.p.observers {
		if err := opt.AfterStage(script.info(), duration); err != nil {
			return Fail(errors.Wrap(err, "unable to run after stage function"))
		}
	}

	return Continue()
}

// skip registers a disabled stage without running it or recording its pipes.
func (ex *execution) skip(script *Script) StageOutcome {
	script.logger.Info("stage disabled", "id", script.Id)
	if err := ex.prepare(script); err != nil {
		return Fail(err)
	}
	if err := ex.run.State.Register(script); err != nil {
		return Fail(err)
	}
	return Continue()
}

// prepare notifies observers once the stage id is final.
func (ex *execution) prepare(script *Script) error {
	parent := model.StartStage
	if last := ex.run.State.Last(); last != nil {
		parent = last.info()
	}
	for _, opt := range ex.p.observers {
		if err := opt.PrepareStage(parent, script.info()); err != nil {
			return errors.Wrap(err, "unable to run prepare stage function")
		}
	}
	return nil
}

func (ex *execution) write(text string) {
	if ex.p.out == nil {
		return
	}
	fmt.Fprintln(ex.p.out, text)
}
