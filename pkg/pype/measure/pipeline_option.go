package measure

import (
	"time"

	"github.com/askiada/go-pype/pkg/pype/model"
)

type pipelineMeasure struct {
	Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.Reset()
	pm.AddMetric(model.StartStage.Key())
	pm.AddMetric(model.EndStage.Key())
	pm.startTime = time.Now()

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Key())

	return nil
}

func (pm *pipelineMeasure) OnPipe(source, target *model.StageInfo, pipe model.Pipe) error {
	pm.GetMetric(target.Key()).AddPipe(source.Key(), pipe.Kind)

	return nil
}

func (pm *pipelineMeasure) AfterStage(stage *model.StageInfo, duration time.Duration) error {
	pm.GetMetric(stage.Key()).AddDuration(duration)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.GetMetric(model.EndStage.Key()).AddDuration(time.Since(pm.startTime))

	return nil
}

// PipelineMeasure records stage durations and pipes into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{Measure: measure}
}
