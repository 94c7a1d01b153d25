package model

// Unbounded is the arity of a member that accepts any number of values.
const Unbounded = -1

// Member describes a typed stage parameter, input or output.
//
// Arity 0 makes the member a presence flag: it is switched on by its option
// alone and never reads values. When ExplicitPipe is set the arity is not
// checked, the value comes from the referenced stage instead.
type Member struct {
	Name         string
	OptionName   string
	Type         Type
	Arity        int
	Range        *Range
	Doc          string
	IOScriptName string
	Default      Value
	Value        Value
	AutoPipe     bool
	ExplicitPipe *string
	Pushed       bool
	// Supplied is set once a value was given on the command line.
	Supplied bool
}

func (m *Member) IsFlag() bool { return m.Arity == 0 }

func (m *Member) HasExplicitPipe() bool { return m.ExplicitPipe != nil }

// ExplicitNone reports a bare "@" reference, which pins the member to None.
func (m *Member) ExplicitNone() bool { return m.ExplicitPipe != nil && *m.ExplicitPipe == "" }

// Clone returns a copy safe to mutate independently.
func (m *Member) Clone() *Member {
	c := *m
	if m.ExplicitPipe != nil {
		ref := *m.ExplicitPipe
		c.ExplicitPipe = &ref
	}
	return &c
}
