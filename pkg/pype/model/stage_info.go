package model

import "fmt"

// StageInfo identifies an executed stage to observers.
type StageInfo struct {
	Index    int
	Name     string
	Id       string
	Disabled bool
}

// Label is the reference form used by explicit pipes, name-id.
func (s *StageInfo) Label() string {
	return s.Name + "-" + s.Id
}

// Key is unique within a run even when a name-id pair repeats.
func (s *StageInfo) Key() string {
	return fmt.Sprintf("%d:%s", s.Index, s.Label())
}

var (
	StartStage = &StageInfo{Index: -1, Name: "start", Id: "0"}
	EndStage   = &StageInfo{Index: -2, Name: "end", Id: "0"}
)
