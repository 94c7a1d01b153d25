package pype

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeHalt
	outcomeFailed
)

// StageOutcome is the result of driving one stage: carry on, stop because
// usage or documentation was requested, or fail. Only a failure carries an error.
type StageOutcome struct {
	kind   outcomeKind
	reason string
	err    error
}

func Continue() StageOutcome {
	return StageOutcome{kind: outcomeContinue}
}

func Halt(reason string) StageOutcome {
	return StageOutcome{kind: outcomeHalt, reason: reason}
}

func Fail(err error) StageOutcome {
	return StageOutcome{kind: outcomeFailed, err: err}
}

func (o StageOutcome) IsContinue() bool { return o.kind == outcomeContinue }

func (o StageOutcome) IsHalt() bool { return o.kind == outcomeHalt }

func (o StageOutcome) IsFailed() bool { return o.kind == outcomeFailed }

func (o StageOutcome) Reason() string { return o.reason }

func (o StageOutcome) Err() error { return o.err }
