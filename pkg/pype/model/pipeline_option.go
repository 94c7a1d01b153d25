package model

import "time"

// PipeKind says how a value travelled between two stages.
type PipeKind string

const (
	PipeAuto     PipeKind = "auto"
	PipeExplicit PipeKind = "explicit"
	PipePushed   PipeKind = "pushed"
)

// Pipe is a resolved value propagation into a stage input.
type Pipe struct {
	Kind         PipeKind
	Member       string
	SourceMember string
}

// PipelineOption defines the interface for pipeline observers.
type PipelineOption interface {
	// New initialises the option at the start of every run.
	New() error
	// PrepareStage runs after a stage is parsed and before it is resolved and executed.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnPipe runs for every value copied into the stage from an earlier one.
	OnPipe(source, target *StageInfo, pipe Pipe) error
	// AfterStage runs once the stage executed and was registered.
	AfterStage(stage *StageInfo, duration time.Duration) error
	// Finish runs after the last stage completed.
	Finish() error
}
