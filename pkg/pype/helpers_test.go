package pype_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/pkg/pype"
	"github.com/askiada/go-pype/pkg/pype/model"
)

var errBoom = errors.New("boom")

// newProducer outputs X, a copy of its X input.
func newProducer() *pype.Script {
	s := pype.NewScript("producer", "emit X", pype.AlgorithmFunc(func(_ context.Context, s *pype.Script) error {
		return s.SetOutput("X", s.Value("X"))
	}))
	s.AddInput(model.Member{Name: "X", OptionName: "x", Type: model.TypeInt, Arity: 1, Default: model.Int(0), Doc: "value to emit"})
	s.AddOutput(model.Member{Name: "X", Type: model.TypeInt, Arity: 1})
	return s
}

func newConsumer() *pype.Script {
	s := pype.NewScript("consumer", "consume X", pype.AlgorithmFunc(func(context.Context, *pype.Script) error {
		return nil
	}))
	s.AddInput(model.Member{Name: "X", OptionName: "x", Type: model.TypeInt, Arity: 1, Default: model.Int(-1), AutoPipe: true, IOScriptName: "producer"})
	s.AddInput(model.Member{Name: "Pair", OptionName: "pair", Type: model.TypeFloat, Arity: 2})
	s.AddInput(model.Member{Name: "Flag", OptionName: "flag", Type: model.TypeBool, Arity: 0, Default: model.Bool(false)})
	s.AddInput(model.Member{Name: "Switch", OptionName: "switch", Type: model.TypeBool, Arity: 1, Default: model.Bool(false)})
	s.AddInput(model.Member{Name: "Mode", OptionName: "mode", Type: model.TypeStr, Arity: 1, Range: model.OneOf("a", "b")})
	s.AddInput(model.Member{Name: "Level", OptionName: "level", Type: model.TypeFloat, Arity: 1, Range: model.Between(0, 1)})
	s.AddInput(model.Member{Name: "Names", OptionName: "names", Type: model.TypeStr, Arity: model.Unbounded})
	return s
}

func newFailing() *pype.Script {
	return pype.NewScript("failing", "always fails", pype.AlgorithmFunc(func(context.Context, *pype.Script) error {
		return errBoom
	}))
}

func newTestRegistry(t *testing.T) *pype.Registry {
	t.Helper()
	reg := pype.NewRegistry()
	require.NoError(t, reg.Register("producer", newProducer))
	require.NoError(t, reg.Register("consumer", newConsumer))
	require.NoError(t, reg.Register("failing", newFailing))
	return reg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPipeline returns a pipeline that reports errors instead of exiting.
func newTestPipeline(t *testing.T, opts ...pype.Option) (*pype.Pipeline, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]pype.Option{
		pype.WithOutput(out),
		pype.WithLogger(discardLogger()),
		pype.ExitOnError(false),
	}, opts...)
	p, err := pype.New(newTestRegistry(t), opts...)
	require.NoError(t, err)
	return p, out
}

func runLine(t *testing.T, line string, opts ...pype.Option) (*pype.Run, string, error) {
	t.Helper()
	p, out := newTestPipeline(t, opts...)
	run, err := p.RunString(context.Background(), line)
	require.NotNil(t, run)
	return run, out.String(), err
}

func stage(t *testing.T, run *pype.Run, name, id string) *pype.Script {
	t.Helper()
	s, err := run.GetScriptObject(name, id)
	require.NoError(t, err)
	return s
}

// recorder is a pipeline option logging every call it receives.
type recorder struct {
	calls []string
}

func (r *recorder) New() error {
	r.calls = append(r.calls, "new")
	return nil
}

func (r *recorder) PrepareStage(parent, stage *model.StageInfo) error {
	r.calls = append(r.calls, "prepare "+parent.Label()+" "+stage.Label())
	return nil
}

func (r *recorder) OnPipe(source, target *model.StageInfo, pipe model.Pipe) error {
	r.calls = append(r.calls, "pipe "+source.Label()+" "+target.Label()+" "+pipe.Member+" "+string(pipe.Kind))
	return nil
}

func (r *recorder) AfterStage(stage *model.StageInfo, _ time.Duration) error {
	r.calls = append(r.calls, "after "+stage.Label())
	return nil
}

func (r *recorder) Finish() error {
	r.calls = append(r.calls, "finish")
	return nil
}

var _ model.PipelineOption = (*recorder)(nil)
