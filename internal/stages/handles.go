package stages

import (
	"fmt"
	"strings"
)

// Image is the opaque handle passed between image stages.
type Image struct {
	Path   string
	Format string
	Bounds []float64
}

func (i *Image) String() string {
	if len(i.Bounds) == 0 {
		return fmt.Sprintf("image(%s, %s)", i.Path, i.Format)
	}
	bounds := make([]string, len(i.Bounds))
	for idx, b := range i.Bounds {
		bounds[idx] = fmt.Sprint(b)
	}
	return fmt.Sprintf("image(%s, %s, [%s])", i.Path, i.Format, strings.Join(bounds, " "))
}

// Surface is the opaque handle passed between surface stages.
type Surface struct {
	Source     *Image
	Level      float64
	Iterations int64
	Method     string
}

func (s *Surface) String() string {
	if s.Iterations == 0 {
		return fmt.Sprintf("surface(%s, level %g)", s.Source, s.Level)
	}
	return fmt.Sprintf("surface(%s, level %g, %s x%d)", s.Source, s.Level, s.Method, s.Iterations)
}
