// Package stages provides reference stages standing in for the image and
// surface algorithms a pipeline chains. They move opaque handles around and
// describe what they would do on the output writer.
package stages

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pype/pkg/pype"
	"github.com/askiada/go-pype/pkg/pype/model"
)

const (
	ImageReader      = "vmtkimagereader"
	ImageViewer      = "vmtkimageviewer"
	ImageVOISelector = "vmtkimagevoiselector"
	MarchingCubes    = "vmtkmarchingcubes"
	SurfaceSmoothing = "vmtksurfacesmoothing"
	SurfaceWriter    = "vmtksurfacewriter"
)

const (
	imageType   model.Type = "vtkImageData"
	surfaceType model.Type = "vtkPolyData"
)

var (
	ErrNoInputFile  = errors.New("no input file name")
	ErrNoOutputFile = errors.New("no output file name")
	ErrNoImage      = errors.New("no input image")
	ErrNoSurface    = errors.New("no input surface")
)

// Register adds every reference stage to reg. Stages describing their work write to out.
func Register(reg *pype.Registry, out io.Writer) error {
	for name, ctor := range map[string]pype.Constructor{
		ImageReader:      NewImageReader,
		ImageViewer:      func() *pype.Script { return NewImageViewer(out) },
		ImageVOISelector: NewImageVOISelector,
		MarchingCubes:    NewMarchingCubes,
		SurfaceSmoothing: NewSurfaceSmoothing,
		SurfaceWriter:    func() *pype.Script { return NewSurfaceWriter(out) },
	} {
		if err := reg.Register(name, ctor); err != nil {
			return err
		}
	}
	return nil
}

func imageInput() model.Member {
	return model.Member{
		Name:         "Image",
		OptionName:   "i",
		Type:         imageType,
		Arity:        1,
		Doc:          "the input image",
		IOScriptName: ImageReader,
		AutoPipe:     true,
	}
}

func surfaceInput() model.Member {
	return model.Member{
		Name:         "Surface",
		OptionName:   "i",
		Type:         surfaceType,
		Arity:        1,
		Doc:          "the input surface",
		IOScriptName: "vmtksurfacereader",
		AutoPipe:     true,
	}
}

func image(s *pype.Script) (*Image, error) {
	img, ok := s.GetObject("Image").(*Image)
	if !ok || img == nil {
		return nil, ErrNoImage
	}
	return img, nil
}

func surface(s *pype.Script) (*Surface, error) {
	srf, ok := s.GetObject("Surface").(*Surface)
	if !ok || srf == nil {
		return nil, ErrNoSurface
	}
	return srf, nil
}

func NewImageReader() *pype.Script {
	s := pype.NewScript(ImageReader, "read an image and make it available to the pipe", pype.AlgorithmFunc(readImage))
	s.AddInput(model.Member{
		Name:       "InputFileName",
		OptionName: "ifile",
		Type:       model.TypeStr,
		Arity:      1,
		Doc:        "input file name",
	})
	s.AddInput(model.Member{
		Name:       "Format",
		OptionName: "f",
		Type:       model.TypeStr,
		Arity:      1,
		Range:      model.OneOf("mha", "vti", "dcm", "raw"),
		Doc:        "file format, guessed from the extension when omitted",
	})
	s.AddOutput(model.Member{
		Name:  "Image",
		Type:  imageType,
		Arity: 1,
		Doc:   "the output image",
	})
	return s
}

func readImage(_ context.Context, s *pype.Script) error {
	path := s.GetStr("InputFileName")
	if path == "" {
		return ErrNoInputFile
	}
	format := s.GetStr("Format")
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	s.Logger().Info("reading image", "file", path, "format", format)
	s.Session.SetLastVisitedDir(filepath.Dir(path))

	return s.SetOutput("Image", model.Object(&Image{Path: path, Format: format}))
}

func NewImageViewer(out io.Writer) *pype.Script {
	s := pype.NewScript(ImageViewer, "display an image", pype.AlgorithmFunc(func(_ context.Context, s *pype.Script) error {
		img, err := image(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "viewing %s\n", img)
		return s.SetOutput("Image", model.Object(img))
	}))
	s.AddInput(imageInput())
	s.AddOutput(model.Member{
		Name:  "Image",
		Type:  imageType,
		Arity: 1,
		Doc:   "the displayed image",
	})
	return s
}

func NewImageVOISelector() *pype.Script {
	s := pype.NewScript(ImageVOISelector, "cut a box-shaped volume of interest out of an image", pype.AlgorithmFunc(selectVOI))
	s.AddInput(imageInput())
	s.AddInput(model.Member{
		Name:       "BoxBounds",
		OptionName: "boxbounds",
		Type:       model.TypeFloat,
		Arity:      6,
		Doc:        "xmin xmax ymin ymax zmin zmax",
	})
	s.AddOutput(model.Member{
		Name:  "Image",
		Type:  imageType,
		Arity: 1,
		Doc:   "the cropped image",
	})
	return s
}

func selectVOI(_ context.Context, s *pype.Script) error {
	img, err := image(s)
	if err != nil {
		return err
	}
	items := s.Value("BoxBounds").Items()
	bounds := make([]float64, 0, len(items))
	for _, item := range items {
		f, _ := item.AsFloat()
		bounds = append(bounds, f)
	}
	for i := 0; i+1 < len(bounds); i += 2 {
		if bounds[i] > bounds[i+1] {
			return errors.Errorf("box bound %d is greater than bound %d", i, i+1)
		}
	}

	cropped := &Image{Path: img.Path, Format: img.Format, Bounds: bounds}
	return s.SetOutput("Image", model.Object(cropped))
}

func NewMarchingCubes() *pype.Script {
	s := pype.NewScript(MarchingCubes, "extract an isosurface from an image", pype.AlgorithmFunc(func(_ context.Context, s *pype.Script) error {
		img, err := image(s)
		if err != nil {
			return err
		}
		srf := &Surface{Source: img, Level: s.GetFloat("Level")}
		if s.GetBool("Connectivity") {
			s.Logger().Info("keeping the largest connected region")
		}
		return s.SetOutput("Surface", model.Object(srf))
	}))
	s.AddInput(imageInput())
	s.AddInput(model.Member{
		Name:       "Level",
		OptionName: "l",
		Type:       model.TypeFloat,
		Arity:      1,
		Doc:        "isosurface level",
		Default:    model.Float(0),
	})
	s.AddInput(model.Member{
		Name:       "Connectivity",
		OptionName: "connectivity",
		Type:       model.TypeBool,
		Arity:      1,
		Doc:        "only keep the largest connected region",
		Default:    model.Bool(false),
	})
	s.AddOutput(model.Member{
		Name:  "Surface",
		Type:  surfaceType,
		Arity: 1,
		Doc:   "the output surface",
	})
	return s
}

func NewSurfaceSmoothing() *pype.Script {
	s := pype.NewScript(SurfaceSmoothing, "smooth a surface", pype.AlgorithmFunc(func(_ context.Context, s *pype.Script) error {
		srf, err := surface(s)
		if err != nil {
			return err
		}
		smoothed := *srf
		smoothed.Iterations = s.GetInt("NumberOfIterations")
		smoothed.Method = s.GetStr("Method")
		if s.GetBool("NormalizeCoordinates") {
			s.Logger().Info("normalizing coordinates")
		}
		return s.SetOutput("Surface", model.Object(&smoothed))
	}))
	s.AddInput(surfaceInput())
	s.AddInput(model.Member{
		Name:       "NumberOfIterations",
		OptionName: "iterations",
		Type:       model.TypeInt,
		Arity:      1,
		Range:      model.AtLeast(1),
		Doc:        "number of smoothing iterations",
		Default:    model.Int(30),
	})
	s.AddInput(model.Member{
		Name:       "PassBand",
		OptionName: "passband",
		Type:       model.TypeFloat,
		Arity:      1,
		Range:      model.Between(0, 2),
		Doc:        "pass band, <i>taubin</i> only",
		Default:    model.Float(1),
	})
	s.AddInput(model.Member{
		Name:       "Method",
		OptionName: "method",
		Type:       model.TypeStr,
		Arity:      1,
		Range:      model.OneOf("taubin", "laplace"),
		Doc:        "smoothing method",
		Default:    model.Str("taubin"),
	})
	s.AddInput(model.Member{
		Name:       "NormalizeCoordinates",
		OptionName: "normalize",
		Type:       model.TypeBool,
		Arity:      0,
		Doc:        "normalize coordinates before smoothing",
		Default:    model.Bool(false),
	})
	s.AddOutput(model.Member{
		Name:  "Surface",
		Type:  surfaceType,
		Arity: 1,
		Doc:   "the smoothed surface",
	})
	return s
}

func NewSurfaceWriter(out io.Writer) *pype.Script {
	s := pype.NewScript(SurfaceWriter, "write a surface to disk", pype.AlgorithmFunc(func(_ context.Context, s *pype.Script) error {
		srf, err := surface(s)
		if err != nil {
			return err
		}
		path := s.GetStr("OutputFileName")
		if path == "" {
			return ErrNoOutputFile
		}
		fmt.Fprintf(out, "writing %s to %s (%s)\n", srf, path, s.GetStr("Mode"))
		return nil
	}))
	s.AddInput(surfaceInput())
	s.AddInput(model.Member{
		Name:       "OutputFileName",
		OptionName: "ofile",
		Type:       model.TypeStr,
		Arity:      1,
		Doc:        "output file name",
	})
	s.AddInput(model.Member{
		Name:       "Mode",
		OptionName: "mode",
		Type:       model.TypeStr,
		Arity:      1,
		Range:      model.OneOf("ascii", "binary"),
		Doc:        "output file mode",
		Default:    model.Str("binary"),
	})
	return s
}
