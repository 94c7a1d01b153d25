package measure

import (
	"sync"
	"time"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// PipeInfo counts the values a stage received from one source stage.
type PipeInfo struct {
	Total    int
	Auto     int
	Explicit int
	Pushed   int
}

type DefaultMetric struct {
	mu       *sync.Mutex
	elapsed  time.Duration
	runs     int
	incoming map[string]*PipeInfo
}

func newDefaultMetric() *DefaultMetric {
	return &DefaultMetric{
		mu:       &sync.Mutex{},
		incoming: make(map[string]*PipeInfo),
	}
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.runs++
	mt.elapsed += elapsed
}

// Duration is the average time spent per recorded execution.
func (mt *DefaultMetric) Duration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.runs == 0 {
		return 0
	}

	return round(mt.elapsed / time.Duration(mt.runs))
}

func (mt *DefaultMetric) Runs() int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.runs
}

func (mt *DefaultMetric) AddPipe(sourceStage string, kind model.PipeKind) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	info := mt.incoming[sourceStage]
	if info == nil {
		info = &PipeInfo{}
		mt.incoming[sourceStage] = info
	}
	info.Total++
	switch kind {
	case model.PipeExplicit:
		info.Explicit++
	case model.PipePushed:
		info.Pushed++
	default:
		info.Auto++
	}
}

func (mt *DefaultMetric) Pipes() map[string]*PipeInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]*PipeInfo, len(mt.incoming))
	for source, info := range mt.incoming {
		c := *info
		out[source] = &c
	}
	return out
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		return d.Round(time.Minute)
	case d > time.Minute:
		return d.Round(time.Second)
	case d > time.Second:
		return d.Round(time.Millisecond)
	case d > time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}

var _ Metric = (*DefaultMetric)(nil)
