package drawer

import (
	"io"
	"sort"
	"text/template"

	"github.com/pkg/errors"
)

const dotTemplate = `strict digraph {
	rankdir="LR";
{{- range .Vertices}}
	"{{.Key}}" [ {{if .XLabel}}label=<{{.Label}}<BR/><FONT POINT-SIZE="10">{{.XLabel}}</FONT>>{{else}}label="{{.Label}}"{{end}}{{range .Attributes}}, {{.Key}}="{{.Value}}"{{end}} ];
{{- end}}
{{- range .Edges}}
	"{{.Source}}" -> "{{.Target}}" [ {{range $i, $a := .Attributes}}{{if $i}}, {{end}}{{$a.Key}}="{{$a.Value}}"{{end}} ];
{{- end}}
}
`

var dotTpl = template.Must(template.New("dot").Parse(dotTemplate))

type attribute struct {
	Key   string
	Value string
}

type vertexStatement struct {
	Key        string
	Label      string
	XLabel     string
	Attributes []attribute
}

type edgeStatement struct {
	Source     string
	Target     string
	Attributes []attribute
}

type description struct {
	Vertices []vertexStatement
	Edges    []edgeStatement
}

// WriteDOT writes the graph in insertion order, attributes sorted by name.
func (d *DOTDrawer) WriteDOT(wrt io.Writer) error {
	desc, err := d.describe()
	if err != nil {
		return err
	}

	err = dotTpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

func (d *DOTDrawer) describe() (description, error) {
	var desc description

	keys, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}
	for _, key := range keys {
		_, properties, err := d.store.Vertex(key)
		if err != nil {
			return desc, errors.Wrapf(err, "unable to get vertex %s", key)
		}
		stmt := vertexStatement{
			Key:    key,
			Label:  properties.Attributes["label"],
			XLabel: properties.Attributes["xlabel"],
		}
		stmt.Attributes = sortedAttributes(properties.Attributes, "label", "xlabel")
		desc.Vertices = append(desc.Vertices, stmt)
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}
	for _, edge := range edges {
		desc.Edges = append(desc.Edges, edgeStatement{
			Source:     edge.Source,
			Target:     edge.Target,
			Attributes: sortedAttributes(edge.Properties.Attributes),
		})
	}

	return desc, nil
}

func sortedAttributes(attributes map[string]string, skip ...string) []attribute {
	skipped := make(map[string]bool, len(skip))
	for _, k := range skip {
		skipped[k] = true
	}

	out := make([]attribute, 0, len(attributes))
	for k, v := range attributes {
		if !skipped[k] {
			out = append(out, attribute{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})

	return out
}
