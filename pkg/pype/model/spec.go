package model

import "strings"

// Request is a per-stage help request that halts the pipeline.
type Request int

const (
	RequestNone Request = iota
	RequestHelp
	RequestDoc
	RequestHTML
)

func (r Request) Flag() string {
	switch r {
	case RequestHelp:
		return "--help"
	case RequestDoc:
		return "--doc"
	case RequestHTML:
		return "--html"
	default:
		return ""
	}
}

// GlobalFlags are the pipeline-wide switches, accepted anywhere in the command.
type GlobalFlags struct {
	NoLog  bool
	NoAuto bool
	Query  bool
	Help   bool
	Doc    bool
	Html   bool
}

// StageSpec is one parsed stage segment.
type StageSpec struct {
	ScriptName      string
	Id              string
	RawOptionTokens []string
	// PushedOptions lists the options written as -name@ on the command line.
	PushedOptions []string
	Request       Request
}

// Tokens serialises the stage back to the tokens it was parsed from.
func (s StageSpec) Tokens() []string {
	out := make([]string, 0, len(s.RawOptionTokens)+2)
	out = append(out, s.ScriptName)

	pending := make(map[string]bool, len(s.PushedOptions))
	for _, name := range s.PushedOptions {
		pending["-"+name] = true
	}
	for _, tok := range s.RawOptionTokens {
		if pending[tok] {
			delete(pending, tok)
			tok += "@"
		}
		out = append(out, tok)
	}
	if flag := s.Request.Flag(); flag != "" {
		out = append(out, flag)
	}
	return out
}

// PipelineSpec is a parsed pipeline: its global flags and ordered stages.
type PipelineSpec struct {
	GlobalFlags GlobalFlags
	Stages      []StageSpec
}

// Tokens serialises the pipeline so that parsing the result yields the same PipelineSpec.
func (p PipelineSpec) Tokens() []string {
	var out []string
	if p.GlobalFlags.NoLog {
		out = append(out, "--nolog")
	}
	if p.GlobalFlags.NoAuto {
		out = append(out, "--noauto")
	}
	if p.GlobalFlags.Query {
		out = append(out, "--query")
	}

	carried := map[Request]bool{}
	for i, stage := range p.Stages {
		if i > 0 {
			out = append(out, "--pipe")
		}
		out = append(out, stage.Tokens()...)
		carried[stage.Request] = true
	}
	if p.GlobalFlags.Help && !carried[RequestHelp] {
		out = append(out, RequestHelp.Flag())
	}
	if p.GlobalFlags.Doc && !carried[RequestDoc] {
		out = append(out, RequestDoc.Flag())
	}
	if p.GlobalFlags.Html && !carried[RequestHTML] {
		out = append(out, RequestHTML.Flag())
	}
	return out
}

// Halting reports whether the pipeline asks for usage or documentation instead of a run.
func (p PipelineSpec) Halting() bool {
	f := p.GlobalFlags
	return f.Query || f.Help || f.Doc || f.Html
}

func (p PipelineSpec) String() string {
	return strings.Join(p.Tokens(), " ")
}
