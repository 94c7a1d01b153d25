package pype

import (
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// RootUsage is the usage of the pipeline itself.
const RootUsage = "Usage: pype --nolog --noauto --query firstScriptName -scriptOptionName scriptOptionValue " +
	"--pipe secondScriptName -scriptOptionName scriptOptionValue -scriptOptionName @firstScriptName.scriptOptionName -id 2 " +
	"--pipe thirdScriptName -scriptOptionName @secondScriptName-2.scriptOptionName"

var docPolicy = sync.OnceValue(bluemonday.UGCPolicy)

// GetUsageString returns the usage text of the script.
func (s *Script) GetUsageString() string {
	return s.Usage()
}

// Usage renders the command synopsis followed by every input and output member.
func (s *Script) Usage() string {
	if s.root {
		return RootUsage
	}

	var b strings.Builder
	b.WriteString("Usage: ")
	b.WriteString(s.Name)
	for _, m := range s.InputMembers {
		if m.OptionName == "" {
			continue
		}
		b.WriteString(" [-")
		b.WriteString(m.OptionName)
		if arg := argSpec(m); arg != "" {
			b.WriteString(" ")
			b.WriteString(arg)
		}
		b.WriteString("]")
	}
	b.WriteString("\n")
	if s.Doc != "" {
		b.WriteString("\n")
		b.WriteString(s.Name)
		b.WriteString(" : ")
		b.WriteString(s.Doc)
		b.WriteString("\n")
	}

	writeMembers(&b, "Input arguments:", s.InputMembers)
	writeMembers(&b, "Output arguments:", s.OutputMembers)
	return b.String()
}

func writeMembers(b *strings.Builder, title string, members []*model.Member) {
	listed := 0
	for _, m := range members {
		if m.OptionName == "" && m.Name == selfMember {
			continue
		}
		if listed == 0 {
			b.WriteString("\n")
			b.WriteString(title)
			b.WriteString("\n")
		}
		listed++

		b.WriteString("  ")
		b.WriteString(optionLabel(m))
		if arg := argSpec(m); arg != "" {
			b.WriteString(" ")
			b.WriteString(arg)
		}
		if notes := memberNotes(m); len(notes) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(notes, "; "))
			b.WriteString(")")
		}
		b.WriteString("\n")
		if m.Doc != "" {
			b.WriteString("      ")
			b.WriteString(m.Doc)
			b.WriteString("\n")
		}
	}
}

func optionLabel(m *model.Member) string {
	if m.OptionName == "" {
		return m.Name
	}
	return "-" + m.OptionName
}

func argSpec(m *model.Member) string {
	placeholder := "<" + string(m.Type) + ">"
	switch {
	case m.Arity == 0:
		return ""
	case m.Arity == model.Unbounded:
		return placeholder + " ..."
	default:
		parts := make([]string, m.Arity)
		for i := range parts {
			parts[i] = placeholder
		}
		return strings.Join(parts, " ")
	}
}

func memberNotes(m *model.Member) []string {
	var notes []string
	if m.Range != nil {
		notes = append(notes, "range "+m.Range.String())
	}
	if !m.Default.IsNone() && m.Arity != 0 {
		notes = append(notes, "default "+m.Default.String())
	}
	if m.AutoPipe {
		notes = append(notes, "auto-piped")
	}
	if m.IOScriptName != "" {
		notes = append(notes, "io "+m.IOScriptName)
	}
	return notes
}

// DocString renders the stage documentation and the documentation of its members.
func (s *Script) DocString() string {
	if s.root {
		return RootUsage
	}

	var b strings.Builder
	b.WriteString(s.Name)
	if s.Doc != "" {
		b.WriteString(" : ")
		b.WriteString(s.Doc)
	}
	b.WriteString("\n")
	for _, group := range []struct {
		title   string
		members []*model.Member
	}{{"Input members:", s.InputMembers}, {"Output members:", s.OutputMembers}} {
		if len(group.members) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(group.title)
		b.WriteString("\n")
		for _, m := range group.members {
			b.WriteString("  ")
			b.WriteString(m.Name)
			b.WriteString(" (")
			b.WriteString(string(m.Type))
			b.WriteString(", arity ")
			b.WriteString(arityLabel(m.Arity))
			b.WriteString(")")
			if m.Doc != "" {
				b.WriteString(": ")
				b.WriteString(m.Doc)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func arityLabel(arity int) string {
	if arity == model.Unbounded {
		return "any"
	}
	return strconv.Itoa(arity)
}

// HTML renders the member tables of the stage. Member documentation may carry
// light markup and is sanitised; everything else is escaped.
func (s *Script) HTML() string {
	policy := docPolicy()

	var b strings.Builder
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(s.Name))
	b.WriteString("</h2>\n")
	if s.Doc != "" {
		b.WriteString("<p>")
		b.WriteString(policy.Sanitize(s.Doc))
		b.WriteString("</p>\n")
	}
	for _, group := range []struct {
		title   string
		members []*model.Member
	}{{"Input arguments", s.InputMembers}, {"Output arguments", s.OutputMembers}} {
		if len(group.members) == 0 {
			continue
		}
		b.WriteString("<h3>")
		b.WriteString(group.title)
		b.WriteString("</h3>\n<table>\n")
		b.WriteString("<tr><th>Argument</th><th>Variable</th><th>Type</th><th>Length</th><th>Range</th><th>Default</th><th>Description</th></tr>\n")
		for _, m := range group.members {
			cells := []string{
				html.EscapeString(optionLabel(m)),
				html.EscapeString(m.Name),
				html.EscapeString(string(m.Type)),
				arityLabel(m.Arity),
				html.EscapeString(m.Range.String()),
				"",
				policy.Sanitize(m.Doc),
			}
			if !m.Default.IsNone() {
				cells[5] = html.EscapeString(m.Default.String())
			}
			b.WriteString("<tr><td>")
			b.WriteString(strings.Join(cells, "</td><td>"))
			b.WriteString("</td></tr>\n")
		}
		b.WriteString("</table>\n")
	}
	return b.String()
}
