package stages_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/internal/stages"
	"github.com/askiada/go-pype/pkg/pype"
	"github.com/askiada/go-pype/pkg/pype/model"
)

func newPipeline(t *testing.T, opts ...pype.Option) (*pype.Pipeline, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	reg := pype.NewRegistry()
	require.NoError(t, stages.Register(reg, out))

	opts = append([]pype.Option{
		pype.WithOutput(out),
		pype.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		pype.ExitOnError(false),
	}, opts...)
	p, err := pype.New(reg, opts...)
	require.NoError(t, err)
	return p, out
}

func TestReaderToViewer(t *testing.T) {
	t.Parallel()

	session := pype.NewSession()
	p, out := newPipeline(t, pype.WithSession(session))
	run, err := p.RunString(context.Background(), "vmtkimagereader -ifile data/a.mha --pipe vmtkimageviewer")
	require.NoError(t, err)
	assert.Equal(t, pype.StatusDone, run.Status)

	reader, err := run.GetScriptObject(stages.ImageReader, "0")
	require.NoError(t, err)
	viewer, err := run.GetScriptObject(stages.ImageViewer, "0")
	require.NoError(t, err)

	assert.Equal(t, reader.Output("Image").Value, viewer.Value("Image"))
	img, ok := viewer.GetObject("Image").(*stages.Image)
	require.True(t, ok)
	assert.Equal(t, &stages.Image{Path: "data/a.mha", Format: "mha"}, img)
	assert.False(t, viewer.Input("Image").Supplied)

	assert.Equal(t, "viewing image(data/a.mha, mha)\n", out.String())
	assert.Equal(t, "data", session.LastVisitedDir())
}

func TestSurfaceChain(t *testing.T) {
	t.Parallel()

	p, out := newPipeline(t)
	run, err := p.RunString(context.Background(),
		"vmtkimagereader -ifile a.vti --pipe vmtkimagevoiselector -boxbounds 0 1 0 1 0 1 "+
			"--pipe vmtkmarchingcubes -l 0.5 -connectivity 1 "+
			"--pipe vmtksurfacesmoothing -iterations 10 -method laplace -normalize "+
			"--pipe vmtksurfacewriter -ofile out.vtp -mode ascii")
	require.NoError(t, err)
	assert.Equal(t, pype.StatusDone, run.Status)

	smoothing, err := run.GetScriptObject(stages.SurfaceSmoothing, "")
	require.NoError(t, err)
	srf, ok := smoothing.GetObject("Surface").(*stages.Surface)
	require.True(t, ok)
	assert.InDelta(t, 0.5, srf.Level, 1e-9)
	assert.Equal(t, []float64{0, 1, 0, 1, 0, 1}, srf.Source.Bounds)

	assert.Equal(t, "writing surface(image(a.vti, vti, [0 1 0 1 0 1]), level 0.5, laplace x10) to out.vtp (ascii)\n", out.String())
}

func TestStageErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		line string
		is   func(error) bool
		want error
	}{
		"missing input file": {
			line: "vmtkimagereader",
			is:   pype.IsExecution,
			want: stages.ErrNoInputFile,
		},
		"viewer without image": {
			line: "vmtkimageviewer",
			is:   pype.IsExecution,
			want: stages.ErrNoImage,
		},
		"viewer under noauto": {
			line: "--noauto vmtkimagereader -ifile a.mha --pipe vmtkimageviewer",
			is:   pype.IsExecution,
			want: stages.ErrNoImage,
		},
		"bad format": {
			line: "vmtkimagereader -ifile a.mha -f png",
			is:   pype.IsRange,
		},
		"bad box": {
			line: "vmtkimagereader -ifile a.mha --pipe vmtkimagevoiselector -boxbounds 0 1 0 1 0",
			is:   pype.IsArity,
		},
		"inverted box": {
			line: "vmtkimagereader -ifile a.mha --pipe vmtkimagevoiselector -boxbounds 1 0 0 1 0 1",
			is:   pype.IsExecution,
		},
		"iterations below range": {
			line: "vmtksurfacesmoothing -iterations 0",
			is:   pype.IsRange,
		},
		"passband above range": {
			line: "vmtksurfacesmoothing -passband 3",
			is:   pype.IsRange,
		},
		"writer without file": {
			line: "vmtkimagereader -ifile a.mha --pipe vmtkmarchingcubes --pipe vmtksurfacewriter",
			is:   pype.IsExecution,
			want: stages.ErrNoOutputFile,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, _ := newPipeline(t)
			_, err := p.RunString(context.Background(), tc.line)
			require.Error(t, err)
			assert.True(t, tc.is(err), err.Error())
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestExplicitImageReference(t *testing.T) {
	t.Parallel()

	p, out := newPipeline(t)
	_, err := p.RunString(context.Background(),
		"vmtkimagereader -ifile a.mha -id 1 --pipe vmtkimagereader -ifile b.mha -id 2 --pipe vmtkimageviewer -i @vmtkimagereader-1.Image")
	require.NoError(t, err)
	assert.Equal(t, "viewing image(a.mha, mha)\n", out.String())
}

func TestRegisterTwice(t *testing.T) {
	t.Parallel()

	reg := pype.NewRegistry()
	require.NoError(t, stages.Register(reg, io.Discard))
	assert.ErrorIs(t, stages.Register(reg, io.Discard), pype.ErrDuplicateScript)
	assert.Len(t, reg.Names(), 6)
}

func TestHandles(t *testing.T) {
	t.Parallel()

	img := &stages.Image{Path: "a.mha", Format: "mha"}
	assert.Equal(t, "image(a.mha, mha)", model.Object(img).String())
	srf := &stages.Surface{Source: img, Level: 1}
	assert.Equal(t, "surface(image(a.mha, mha), level 1)", srf.String())
}
