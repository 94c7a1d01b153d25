// Package model provides the data structures shared by the pype engine and its observers.
// It defines the typed values and members a stage declares, the parsed form of a pipeline,
// and the hooks an observer implements to follow a run.
package model
