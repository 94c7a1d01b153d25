// Package pype provides the execution engine for chains of typed processing stages.
//
// A pipeline is written as a single command: the name of a stage followed by its options, then
// --pipe and the next stage, and so on. Each stage declares typed input and output members. The
// engine tokenizes the command, splits it into stage segments, parses and validates every option
// against the member declarations, and runs the stages strictly in order.
//
// Values flow between stages in two ways. Auto-pipe copies an output of the previous stage into
// the same-named input of the next one, unless the input was given on the command line or
// --noauto is set. Explicit pipes name their source with a reference token, for example
// -Surface @vmtksurfacereader.Surface or @vmtkcenterlines-2.Centerlines, and resolve whatever the
// auto-pipe setting.
//
// The algorithms behind the stages are opaque collaborators implementing Algorithm. The engine
// only manages their parameters, the order they run in, and how failures are reported: every
// error is written to the output sink together with the stage usage, then either terminates the
// process or is returned to the caller depending on the exit-on-error policy.
package pype
