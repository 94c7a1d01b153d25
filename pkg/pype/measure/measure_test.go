package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/pkg/pype/measure"
	"github.com/askiada/go-pype/pkg/pype/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("stage")
	assert.Same(t, mt, m.GetMetric("stage"))
	assert.Zero(t, mt.Duration())

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	assert.Equal(t, 2, mt.Runs())
	assert.Equal(t, 20*time.Millisecond, mt.Duration())

	mt.AddPipe("source", model.PipeAuto)
	mt.AddPipe("source", model.PipeExplicit)
	mt.AddPipe("other", model.PipePushed)
	assert.Equal(t, map[string]*measure.PipeInfo{
		"source": {Total: 2, Auto: 1, Explicit: 1},
		"other":  {Total: 1, Pushed: 1},
	}, mt.Pipes())

	m.Reset()
	assert.Empty(t, m.AllMetrics())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	source := &model.StageInfo{Index: 0, Name: "producer", Id: "0"}
	target := &model.StageInfo{Index: 1, Name: "consumer", Id: "0"}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStage(model.StartStage, source))
	require.NoError(t, opt.AfterStage(source, time.Millisecond))
	require.NoError(t, opt.PrepareStage(source, target))
	require.NoError(t, opt.OnPipe(source, target, model.Pipe{Kind: model.PipeAuto, Member: "X"}))
	require.NoError(t, opt.AfterStage(target, 2*time.Millisecond))
	require.NoError(t, opt.Finish())

	metrics := m.AllMetrics()
	assert.Len(t, metrics, 4)
	assert.Equal(t, 2*time.Millisecond, metrics[target.Key()].Duration())
	assert.Equal(t, 1, metrics[target.Key()].Pipes()[source.Key()].Total)
	assert.Equal(t, 1, metrics[model.EndStage.Key()].Runs())

	require.NoError(t, opt.New())
	assert.Len(t, m.AllMetrics(), 2)
}
