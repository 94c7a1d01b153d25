package pype

import (
	"strings"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// Edge is a value copied into a stage input from an earlier stage.
type Edge struct {
	Source *Script
	Pipe   model.Pipe
}

// Resolver fills stage inputs from the stages already registered in State.
type Resolver struct {
	State  *State
	NoAuto bool
}

// Resolve applies, in increasing precedence, auto pipes, pushed members and
// explicit references to the inputs of s. It returns the edges it created.
func (r *Resolver) Resolve(s *Script) ([]Edge, error) {
	var edges []Edge
	previous := r.State.LastExecuted()

	for _, m := range s.InputMembers {
		switch {
		case m.HasExplicitPipe():
			edge, err := r.resolveExplicit(s, m)
			if err != nil {
				return nil, err
			}
			if edge != nil {
				edges = append(edges, *edge)
			}
		case m.Pushed:
			if edge := r.resolvePushed(previous, m); edge != nil {
				edges = append(edges, *edge)
			}
		case m.AutoPipe && !m.Supplied:
			if edge := r.resolveAuto(previous, m); edge != nil {
				edges = append(edges, *edge)
			}
		}
	}

	s.syncBuiltins()
	return edges, nil
}

func (r *Resolver) resolveAuto(previous *Script, m *model.Member) *Edge {
	if r.NoAuto || previous == nil || isBuiltin(m.Name) {
		return nil
	}
	source := previous.Output(m.Name)
	if source == nil {
		return nil
	}
	m.Value = source.Value
	return &Edge{Source: previous, Pipe: model.Pipe{Kind: model.PipeAuto, Member: m.Name, SourceMember: source.Name}}
}

// resolvePushed lets a -name@ member take the same-named value of the previous
// stage over any literal given with it. Outputs are preferred to inputs.
func (r *Resolver) resolvePushed(previous *Script, m *model.Member) *Edge {
	if r.NoAuto || previous == nil {
		return nil
	}
	source := previous.Output(m.Name)
	if source == nil {
		source = previous.Input(m.Name)
	}
	if source == nil {
		return nil
	}
	m.Value = source.Value
	return &Edge{Source: previous, Pipe: model.Pipe{Kind: model.PipePushed, Member: m.Name, SourceMember: source.Name}}
}

func (r *Resolver) resolveExplicit(s *Script, m *model.Member) (*Edge, error) {
	if m.ExplicitNone() {
		m.Value = model.None()
		return nil, nil
	}

	ref := parseReference(*m.ExplicitPipe, m.Name)
	var source *Script
	switch {
	case ref.script == "":
		source = r.State.Last()
		if source == nil {
			return nil, r.unresolved(s, m, "no previous stage to pipe from")
		}
	case ref.id == "":
		source = r.State.Latest(ref.script)
		if source == nil {
			return nil, r.unresolved(s, m, "no stage named "+ref.script+" before this one")
		}
	default:
		matches := r.State.Lookup(ref.script, ref.id)
		switch len(matches) {
		case 0:
			return nil, r.unresolved(s, m, "no stage "+ref.script+"-"+ref.id+" before this one")
		case 1:
			source = matches[0]
		default:
			return nil, r.unresolved(s, m, "reference "+ref.script+"-"+ref.id+" is ambiguous")
		}
	}

	member := sourceMember(source, ref.member)
	if member == nil {
		return nil, r.unresolved(s, m, "stage "+source.Name+"-"+source.Id+" has no member "+ref.member)
	}

	m.Value = member.Value
	return &Edge{Source: source, Pipe: model.Pipe{Kind: model.PipeExplicit, Member: m.Name, SourceMember: member.Name}}, nil
}

// sourceMember looks a referenced member up, outputs first. A disabled stage
// never set its outputs, so its inputs come first.
func sourceMember(source *Script, name string) *model.Member {
	first, second := source.Output, source.Input
	if source.Disabled {
		first, second = second, first
	}
	if m := first(name); m != nil {
		return m
	}
	return second(name)
}

func (r *Resolver) unresolved(s *Script, m *model.Member, message string) error {
	return s.usageError(ErrUnresolvedReference, m.Name, "@"+*m.ExplicitPipe+": "+message)
}

type reference struct {
	script string
	id     string
	member string
}

// parseReference splits [ScriptName[-Id]][.memberName]. The member defaults to
// the name of the input being resolved.
func parseReference(ref, memberName string) reference {
	out := reference{member: memberName}
	target := ref
	if dot := strings.Index(ref, "."); dot >= 0 {
		target = ref[:dot]
		if name := ref[dot+1:]; name != "" {
			out.member = name
		}
	}
	if dash := strings.LastIndex(target, "-"); dash >= 0 {
		out.script, out.id = target[:dash], target[dash+1:]
	} else {
		out.script = target
	}
	return out
}

func isBuiltin(name string) bool {
	return name == idMember || name == selfMember || name == disabledMember
}
