package pype

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pype/pkg/pype/model"
)

const (
	idMember       = "Id"
	selfMember     = "Self"
	disabledMember = "Disabled"
	idOption       = "id"
	disabledOption = "disabled"
)

// Algorithm is the collaborator that does the actual work of a stage. It reads
// the stage inputs and sets its outputs through the Script accessors.
type Algorithm interface {
	Execute(ctx context.Context, s *Script) error
}

// AlgorithmFunc adapts a function to Algorithm.
type AlgorithmFunc func(ctx context.Context, s *Script) error

func (f AlgorithmFunc) Execute(ctx context.Context, s *Script) error {
	return f(ctx, s)
}

// Script is the runtime instance of a stage.
type Script struct {
	Name          string
	Id            string
	Doc           string
	InputMembers  []*model.Member
	OutputMembers []*model.Member
	Disabled      bool
	Algorithm     Algorithm
	Session       *Session

	// LogOn and ExitOnError mirror the policy of the running pipeline for the
	// algorithm to read. Changing them has no effect on the pipeline.
	LogOn       bool
	ExitOnError bool

	logger   *slog.Logger
	index    int
	executed bool
	root     bool
}

// NewScript creates a stage instance carrying the built-in Id, Self and Disabled inputs.
func NewScript(name, doc string, algorithm Algorithm) *Script {
	s := &Script{
		Name:        name,
		Id:          defaultID,
		Doc:         doc,
		LogOn:       true,
		ExitOnError: true,
		Algorithm:   algorithm,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		index:       -1,
	}
	s.InputMembers = []*model.Member{
		{
			Name:       idMember,
			OptionName: idOption,
			Type:       model.TypeStr,
			Arity:      1,
			Doc:        "script id",
			Default:    model.Str(defaultID),
			Value:      model.Str(defaultID),
		},
		{
			Name:  selfMember,
			Type:  "self",
			Arity: 1,
			Doc:   "handle to the script itself",
		},
		{
			Name:       disabledMember,
			OptionName: disabledOption,
			Type:       model.TypeBool,
			Arity:      1,
			Doc:        "disable execution and piping",
			Default:    model.Bool(false),
			Value:      model.Bool(false),
		},
	}
	s.InputMembers[1].Value = model.Object(s)
	return s
}

// NewRootScript returns the pipeline itself seen as a script: it declares no
// members of its own and its usage describes the pipe grammar.
func NewRootScript() *Script {
	s := NewScript(RootScriptName, "chain stages into a pipeline", nil)
	s.root = true
	return s
}

// AddInput declares an input member. The value starts at the member default.
func (s *Script) AddInput(m model.Member) *Script {
	member := m.Clone()
	member.Value = member.Default
	s.InputMembers = append(s.InputMembers, member)
	return s
}

// AddOutput declares an output member. Outputs are only reached through
// pipes, so any option name is dropped.
func (s *Script) AddOutput(m model.Member) *Script {
	member := m.Clone()
	member.OptionName = ""
	member.Value = member.Default
	s.OutputMembers = append(s.OutputMembers, member)
	return s
}

func (s *Script) Input(name string) *model.Member {
	return findMember(s.InputMembers, name)
}

func (s *Script) Output(name string) *model.Member {
	return findMember(s.OutputMembers, name)
}

func findMember(members []*model.Member, name string) *model.Member {
	for _, m := range members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// SetOutput stores the value of a declared output member.
func (s *Script) SetOutput(name string, v model.Value) error {
	m := s.Output(name)
	if m == nil {
		return newStageError(ErrUsage, s.Name, name, "no such output member")
	}
	m.Value = v
	return nil
}

// Value returns the current value of an input member, None when undeclared.
func (s *Script) Value(name string) model.Value {
	if m := s.Input(name); m != nil {
		return m.Value
	}
	return model.None()
}

func (s *Script) GetInt(name string) int64 {
	i, _ := s.Value(name).AsInt()
	return i
}

func (s *Script) GetFloat(name string) float64 {
	f, _ := s.Value(name).AsFloat()
	return f
}

func (s *Script) GetStr(name string) string {
	v, _ := s.Value(name).AsStr()
	return v
}

func (s *Script) GetBool(name string) bool {
	b, _ := s.Value(name).AsBool()
	return b
}

func (s *Script) GetObject(name string) any {
	obj, _ := s.Value(name).AsObject()
	return obj
}

// Logger returns the logger of the running stage.
func (s *Script) Logger() *slog.Logger {
	return s.logger
}

// Executed reports whether the stage ran its algorithm in this run.
func (s *Script) Executed() bool {
	return s.executed
}

func (s *Script) info() *model.StageInfo {
	return &model.StageInfo{Index: s.index, Name: s.Name, Id: s.Id, Disabled: s.Disabled}
}

// ParseArguments casts and validates the option tokens of the stage into its input members.
func (s *Script) ParseArguments(spec model.StageSpec) error {
	options := make(map[string]*model.Member, len(s.InputMembers))
	for _, m := range s.InputMembers {
		if m.OptionName != "" {
			options[m.OptionName] = m
		}
	}

	values := make(map[*model.Member][]string)
	var current *model.Member
	for _, tok := range spec.RawOptionTokens {
		if isOptionToken(tok) {
			name := tok[1:]
			m, ok := options[name]
			if !ok {
				return s.unknownOption(name)
			}
			if _, dup := values[m]; dup {
				return s.usageError(ErrUsage, m.Name, "option -"+name+" given more than once")
			}
			values[m] = []string{}
			current = m
			continue
		}
		if current == nil {
			return s.usageError(ErrUsage, "", fmt.Sprintf("unexpected value %q before any option", tok))
		}
		values[current] = append(values[current], tok)
	}

	for _, name := range spec.PushedOptions {
		m, ok := options[name]
		if !ok {
			return s.unknownOption(name)
		}
		m.Pushed = true
	}

	for _, m := range s.InputMembers {
		raw, ok := values[m]
		if !ok {
			continue
		}
		if err := s.parseMember(m, raw); err != nil {
			return err
		}
	}

	s.syncBuiltins()
	return nil
}

func (s *Script) parseMember(m *model.Member, raw []string) error {
	cast := make([]model.Value, 0, len(raw))
	for _, tok := range raw {
		if strings.HasPrefix(tok, referencePrefix) {
			ref := strings.TrimPrefix(tok, referencePrefix)
			m.ExplicitPipe = &ref
			continue
		}
		v, err := castToken(m.Type, tok)
		if err != nil {
			return s.usageError(ErrType, m.Name, fmt.Sprintf("cannot cast %q to %s", tok, m.Type))
		}
		cast = append(cast, v)
	}

	pushedOnly := m.Pushed && len(cast) == 0
	if m.Arity != model.Unbounded && !m.HasExplicitPipe() && !pushedOnly && len(cast) != m.Arity {
		return s.usageError(ErrArity, m.Name, fmt.Sprintf("expected %d value(s), got %d", m.Arity, len(cast)))
	}

	if m.IsFlag() {
		m.Value = model.Bool(true)
		m.Supplied = true
		s.logMember(m)
		return nil
	}

	if m.Type == model.TypeBool {
		for i, v := range cast {
			n, _ := v.AsInt()
			if n != 0 && n != 1 {
				return s.usageError(ErrRange, m.Name, fmt.Sprintf("bool value must be 0 or 1, got %d", n))
			}
			cast[i] = model.Bool(n == 1)
		}
	}

	for _, v := range cast {
		if !m.Range.Contains(v) {
			return s.usageError(ErrRange, m.Name, fmt.Sprintf("value %s outside range %s", v, m.Range))
		}
	}

	if len(cast) > 0 {
		if m.Arity == 1 {
			m.Value = cast[0]
		} else {
			m.Value = model.List(cast...)
		}
		m.Supplied = true
	}
	s.logMember(m)
	return nil
}

func castToken(typ model.Type, tok string) (model.Value, error) {
	if !typ.IsBuiltin() {
		// object tokens are resolved by the stage that consumes them
		return model.Str(tok), nil
	}
	switch typ {
	case model.TypeStr:
		return model.Str(tok), nil
	case model.TypeInt, model.TypeBool:
		i, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return model.None(), err
		}
		return model.Int(i), nil
	case model.TypeFloat:
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return model.None(), err
		}
		return model.Float(f), nil
	default:
		return model.None(), errors.Errorf("no cast for type %s", typ)
	}
}

func (s *Script) logMember(m *model.Member) {
	if !s.LogOn {
		return
	}
	var rendered string
	switch {
	case m.HasExplicitPipe():
		rendered = referencePrefix + *m.ExplicitPipe
	case m.IsFlag():
		rendered = "off"
		if on, _ := m.Value.AsBool(); on {
			rendered = "on"
		}
	default:
		rendered = m.Value.String()
	}
	s.logger.Info(m.Name + " = " + rendered)
}

// syncBuiltins mirrors the Id and Disabled members onto the script fields.
func (s *Script) syncBuiltins() {
	if id, ok := s.Value(idMember).AsStr(); ok && id != "" {
		s.Id = id
	} else if m := s.Input(idMember); m != nil && !m.Value.IsNone() {
		s.Id = m.Value.String()
	}
	s.Disabled = s.GetBool(disabledMember)
}

// Execute runs the stage algorithm.
func (s *Script) Execute(ctx context.Context) error {
	if s.Algorithm == nil {
		return s.usageError(ErrExecution, "", "no algorithm bound to the stage")
	}
	if err := s.Algorithm.Execute(ctx, s); err != nil {
		stageErr := s.usageError(ErrExecution, "", "")
		stageErr.cause = err
		return stageErr
	}
	s.executed = true
	return nil
}

func (s *Script) usageError(kind error, member, message string) *StageError {
	err := newStageError(kind, s.Name, member, message)
	err.Usage = s.Usage()
	return err
}

func (s *Script) unknownOption(name string) *StageError {
	var candidates []string
	for _, m := range s.InputMembers {
		if m.OptionName != "" {
			candidates = append(candidates, m.OptionName)
		}
	}
	err := s.usageError(ErrUsage, "", "unknown option -"+name)
	for _, suggestion := range suggest(name, candidates) {
		err.Suggestions = append(err.Suggestions, "-"+suggestion)
	}
	return err
}
