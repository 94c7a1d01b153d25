package drawer

import (
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-pype/internal/store"
	"github.com/askiada/go-pype/pkg/pype/measure"
	"github.com/askiada/go-pype/pkg/pype/model"
)

// DOTDrawer renders the executed stages and their pipes as a Graphviz DOT graph.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	store *store.AppendStore[string, string]
	open  func() (io.WriteCloser, error)
}

// NewDOTDrawer creates a drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	return NewDOTDrawerWriter(func() (io.WriteCloser, error) {
		file, err := os.Create(dotFileName)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create file %s", dotFileName)
		}
		return file, nil
	})
}

// NewDOTDrawerWriter creates a drawer writing to the destination returned by open on every Draw.
func NewDOTDrawerWriter(open func() (io.WriteCloser, error)) *DOTDrawer {
	d := &DOTDrawer{open: open}
	_ = d.Reset()
	return d
}

func (d *DOTDrawer) Reset() error {
	d.store = store.NewAppendStore[string, string]()
	d.graph = graph.NewWithStore(graph.StringHash, graph.Store[string, string](d.store), graph.Directed())
	return nil
}

// AddStage adds a stage to the pipeline graph.
func (d *DOTDrawer) AddStage(key, label string, attributes map[string]string) error {
	options := []func(*graph.VertexProperties){graph.VertexAttribute("label", label)}
	for k, v := range attributes {
		options = append(options, graph.VertexAttribute(k, v))
	}

	err := d.graph.AddVertex(key, options...)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", key)
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentKey, childKey string, attributes map[string]string) error {
	options := make([]func(*graph.EdgeProperties), 0, len(attributes))
	for k, v := range attributes {
		options = append(options, graph.EdgeAttribute(k, v))
	}

	err := d.graph.AddEdge(parentKey, childKey, options...)
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return d.mergeLink(parentKey, childKey, attributes)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentKey, childKey)
	}

	return nil
}

// mergeLink folds attributes into an existing edge. Labels accumulate and a
// link without style makes the edge solid.
func (d *DOTDrawer) mergeLink(parentKey, childKey string, attributes map[string]string) error {
	return d.updateLink(parentKey, childKey, func(merged map[string]string) {
		if _, ok := attributes["style"]; !ok {
			delete(merged, "style")
		}
		for k, v := range attributes {
			if k == "label" && merged[k] != "" {
				v = merged[k] + ", " + v
			}
			merged[k] = v
		}
	})
}

func (d *DOTDrawer) updateLink(parentKey, childKey string, update func(map[string]string)) error {
	edge, err := d.graph.Edge(parentKey, childKey)
	if err != nil {
		return errors.Wrapf(err, "unable to get edge from %s to %s", parentKey, childKey)
	}

	merged := make(map[string]string, len(edge.Properties.Attributes))
	for k, v := range edge.Properties.Attributes {
		merged[k] = v
	}
	update(merged)

	err = d.store.UpdateEdge(parentKey, childKey, graph.Edge[string]{
		Source:     parentKey,
		Target:     childKey,
		Properties: graph.EdgeProperties{Attributes: merged, Weight: edge.Properties.Weight},
	})
	if err != nil {
		return errors.Wrapf(err, "unable to update edge from %s to %s", parentKey, childKey)
	}

	return nil
}

// Draw writes the DOT description of the pipeline graph.
func (d *DOTDrawer) Draw() error {
	wrt, err := d.open()
	if err != nil {
		return err
	}
	defer wrt.Close()

	err = d.WriteDOT(wrt)
	if err != nil {
		return errors.Wrap(err, "unable to write dot graph")
	}

	return nil
}

// SetTotalTime sets the total time for the stage.
func (d *DOTDrawer) SetTotalTime(key string, startTime time.Time) error {
	err := d.store.UpdateVertex(key, graph.VertexAttribute("xlabel", round(time.Since(startTime)).String()))
	if err != nil {
		return errors.Wrapf(err, "unable to set total time on %s", key)
	}

	return nil
}

const maxRGB = 240

// AddMeasure colours every executed stage from blue (fastest) to red (slowest)
// and writes its duration and pipe counts on the graph.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	durations := make([]time.Duration, 0, len(msr.AllMetrics()))
	for key, metric := range msr.AllMetrics() {
		if metric.Runs() == 0 || isBoundary(key) {
			continue
		}
		durations = append(durations, metric.Duration())
	}
	if len(durations) == 0 {
		return nil
	}

	sort.Slice(durations, func(i, j int) bool {
		return durations[i] > durations[j]
	})
	maxValue := durations[0]
	minValue := durations[len(durations)-1]

	for key, metric := range msr.AllMetrics() {
		if isBoundary(key) {
			continue
		}
		if err := d.updateStage(key, metric, minValue, maxValue); err != nil {
			return err
		}
		if err := d.updatePipes(key, metric); err != nil {
			return err
		}
	}

	return nil
}

func (d *DOTDrawer) updateStage(key string, metric measure.Metric, minValue, maxValue time.Duration) error {
	if metric.Runs() == 0 {
		return nil
	}

	fraction := 1.0
	if maxValue > minValue {
		fraction = float64(metric.Duration()-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return errors.Wrap(err, "unable to get colour")
	}

	err = d.store.UpdateVertex(key,
		graph.VertexAttribute("color", colour.ToHEX().String()),
		graph.VertexAttribute("xlabel", metric.Duration().String()),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to update vertex %s", key)
	}

	return nil
}

func (d *DOTDrawer) updatePipes(key string, metric measure.Metric) error {
	for source, info := range metric.Pipes() {
		err := d.updateLink(source, key, func(attributes map[string]string) {
			attributes["fontcolor"] = "blue"
			attributes["penwidth"] = strconv.Itoa(info.Total)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func isBoundary(key string) bool {
	return key == model.StartStage.Key() || key == model.EndStage.Key()
}

func round(d time.Duration) time.Duration {
	if d > time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}

var _ Drawer = (*DOTDrawer)(nil)
