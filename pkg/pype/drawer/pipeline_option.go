package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-pype/pkg/pype/measure"
	"github.com/askiada/go-pype/pkg/pype/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	last      *model.StageInfo
}

func (pd *pipelineDrawer) New() error {
	err := pd.Reset()
	if err != nil {
		return errors.Wrap(err, "unable to reset drawer")
	}
	err = pd.AddStage(model.StartStage.Key(), model.StartStage.Name, map[string]string{"shape": "box"})
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Key(), model.EndStage.Name, map[string]string{"shape": "box"})
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	pd.startTime = time.Now()
	pd.last = model.StartStage

	return nil
}

// PrepareStage draws the stage and a dotted edge from the stage before it.
func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	attributes := map[string]string{}
	if stage.Disabled {
		attributes["style"] = "dashed"
	}
	err := pd.AddStage(stage.Key(), stage.Label(), attributes)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStage.Key(), stage.Key(), map[string]string{"style": "dotted"})
	if err != nil {
		return err
	}

	pd.last = stage

	return nil
}

func (pd *pipelineDrawer) OnPipe(source, target *model.StageInfo, pipe model.Pipe) error {
	attributes := map[string]string{"label": pipe.Member}
	if pipe.Kind == model.PipeExplicit {
		attributes["color"] = "blue"
	}

	return pd.AddLink(source.Key(), target.Key(), attributes)
}

func (pd *pipelineDrawer) AfterStage(*model.StageInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.AddLink(pd.last.Key(), model.EndStage.Key(), map[string]string{"style": "dotted"})
	if err != nil {
		return errors.Wrap(err, "unable to link end stage")
	}

	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStage.Key(), pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws every run with drawer. When measure is set, stage
// durations recorded by the matching measure option are drawn too.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, last: model.StartStage}
}
