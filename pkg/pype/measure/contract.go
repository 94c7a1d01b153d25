package measure

import (
	"time"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// Measure collects one Metric per stage of a run.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	Reset()
}

// Metric holds the timings and incoming pipes of a stage.
type Metric interface {
	AddDuration(elapsed time.Duration)
	Duration() time.Duration
	Runs() int
	AddPipe(sourceStage string, kind model.PipeKind)
	Pipes() map[string]*PipeInfo
}
