package pype

import (
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-pype/internal/store"
	"github.com/askiada/go-pype/pkg/pype/model"
)

// State records the stages of one run in execution order together with the
// data-flow edges between them. It only grows: a stage is registered once,
// after it ran or was skipped as disabled.
type State struct {
	scripts []*Script
	byKey   map[stateKey][]*Script
	store   store.CustomStore[int, *Script]
	graph   graph.Graph[int, *Script]
}

type stateKey struct {
	name string
	id   string
}

func scriptHash(s *Script) int {
	return s.index
}

func NewState() *State {
	st := store.NewAppendStore[int, *Script]()
	return &State{
		byKey: make(map[stateKey][]*Script),
		store: st,
		graph: graph.NewWithStore(scriptHash, graph.Store[int, *Script](st), graph.Directed()),
	}
}

// Register appends a stage to the state.
func (st *State) Register(s *Script) error {
	if s == nil {
		return ErrScriptMustBeSet
	}
	if s.index >= 0 && s.index < len(st.scripts) && st.scripts[s.index] == s {
		return errors.Errorf("stage %s-%s is already registered", s.Name, s.Id)
	}

	s.index = len(st.scripts)
	err := st.graph.AddVertex(s,
		graph.VertexAttribute("label", s.Name+"-"+s.Id),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to register stage %s-%s", s.Name, s.Id)
	}
	if s.Disabled {
		err = st.store.UpdateVertex(s.index, graph.VertexAttribute("style", "dashed"))
		if err != nil {
			return errors.Wrap(err, "unable to mark disabled stage")
		}
	}

	st.scripts = append(st.scripts, s)
	key := stateKey{s.Name, s.Id}
	st.byKey[key] = append(st.byKey[key], s)
	return nil
}

// AddPipe records that member of target was fed from source.
func (st *State) AddPipe(source, target *Script, pipe model.Pipe) error {
	label := pipe.Member
	if pipe.SourceMember != "" && pipe.SourceMember != pipe.Member {
		label = pipe.SourceMember + "->" + pipe.Member
	}

	err := st.graph.AddEdge(source.index, target.index,
		graph.EdgeAttribute("label", label),
		graph.EdgeAttribute("kind", string(pipe.Kind)),
	)
	if errors.Is(err, graph.ErrEdgeAlreadyExists) {
		edge, edgeErr := st.graph.Edge(source.index, target.index)
		if edgeErr != nil {
			return errors.Wrap(edgeErr, "unable to read existing pipe")
		}
		label = edge.Properties.Attributes["label"] + ", " + label
		err = st.graph.UpdateEdge(source.index, target.index, graph.EdgeAttribute("label", label))
	}
	if err != nil {
		return errors.Wrapf(err, "unable to record pipe from %s-%s to %s-%s", source.Name, source.Id, target.Name, target.Id)
	}
	return nil
}

// Scripts returns the registered stages in execution order.
func (st *State) Scripts() []*Script {
	return append([]*Script(nil), st.scripts...)
}

func (st *State) Len() int {
	return len(st.scripts)
}

// Last returns the most recently registered stage, nil when empty.
func (st *State) Last() *Script {
	if len(st.scripts) == 0 {
		return nil
	}
	return st.scripts[len(st.scripts)-1]
}

// LastExecuted returns the most recent stage that actually ran.
func (st *State) LastExecuted() *Script {
	for i := len(st.scripts) - 1; i >= 0; i-- {
		if st.scripts[i].executed {
			return st.scripts[i]
		}
	}
	return nil
}

// Lookup returns every registered stage with the given name and id.
func (st *State) Lookup(name, id string) []*Script {
	return append([]*Script(nil), st.byKey[stateKey{name, id}]...)
}

// Latest returns the most recently registered stage with the given name.
func (st *State) Latest(name string) *Script {
	for i := len(st.scripts) - 1; i >= 0; i-- {
		if st.scripts[i].Name == name {
			return st.scripts[i]
		}
	}
	return nil
}

// GetScriptObject returns the stage registered as name-id. An empty id picks
// the latest stage of that name.
func (st *State) GetScriptObject(name, id string) (*Script, error) {
	if id == "" {
		if s := st.Latest(name); s != nil {
			return s, nil
		}
		return nil, newStageError(ErrUnresolvedReference, name, "", "no such stage in the pipeline")
	}

	matches := st.Lookup(name, id)
	switch len(matches) {
	case 0:
		return nil, newStageError(ErrUnresolvedReference, name+"-"+id, "", "no such stage in the pipeline")
	case 1:
		return matches[0], nil
	default:
		return nil, newStageError(ErrUnresolvedReference, name+"-"+id, "", "ambiguous reference, use -id to tell the stages apart")
	}
}

// Upstream returns the stages that fed values into s, in execution order.
func (st *State) Upstream(s *Script) ([]*Script, error) {
	predecessors, err := st.graph.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build predecessor map")
	}

	var sources []*Script
	for _, candidate := range st.scripts {
		if _, ok := predecessors[s.index][candidate.index]; ok {
			sources = append(sources, candidate)
		}
	}
	return sources, nil
}

// Edges lists the recorded pipes as "source -> target [label]" lines, in the order they were made.
func (st *State) Edges() ([]string, error) {
	edges, err := st.store.ListEdges()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list pipes")
	}

	lines := make([]string, 0, len(edges))
	for _, edge := range edges {
		source, target := st.scripts[edge.Source], st.scripts[edge.Target]
		var b strings.Builder
		b.WriteString(source.Name + "-" + source.Id)
		b.WriteString(" -> ")
		b.WriteString(target.Name + "-" + target.Id)
		b.WriteString(" [" + edge.Properties.Attributes["label"] + "]")
		lines = append(lines, b.String())
	}
	return lines, nil
}

// Graph exposes the data-flow graph of the run.
func (st *State) Graph() graph.Graph[int, *Script] {
	return st.graph
}
