package drawer

import (
	"time"

	"github.com/askiada/go-pype/pkg/pype/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// Reset forgets every stage and link drawn so far.
	Reset() error
	// AddStage adds a stage to the pipeline drawer.
	AddStage(key, label string, attributes map[string]string) error
	// AddLink adds a link between two stages. Linking the same stages twice merges the labels.
	AddLink(parentKey, childKey string, attributes map[string]string) error
	// Draw writes the pipeline graph.
	Draw() error
	// SetTotalTime sets the total time for the stage.
	SetTotalTime(key string, startTime time.Time) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
