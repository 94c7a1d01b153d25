package pype

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUsage reports an unknown flag or option, or malformed quoting.
	ErrUsage = errors.New("usage error")
	// ErrArity reports a wrong number of values for a fixed-arity member.
	ErrArity = errors.New("arity error")
	// ErrRange reports a value outside the declared range, or a bool other than 0/1.
	ErrRange = errors.New("range error")
	// ErrType reports a value that could not be cast to the member type.
	ErrType = errors.New("type error")
	// ErrUnresolvedReference reports an explicit pipe whose target is missing or ambiguous.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrScriptNotFound reports an unknown stage name.
	ErrScriptNotFound = errors.New("script not found")
	// ErrExecution reports a stage whose algorithm failed.
	ErrExecution = errors.New("execution error")

	ErrRegistryMustBeSet = errors.New("registry must be set")
	ErrDuplicateScript   = errors.New("script already registered")
	ErrScriptMustBeSet   = errors.New("script must be set")
)

// StageError is the error raised while parsing, resolving or executing a stage.
// It unwraps to one of the taxonomy sentinels above and, when present, to its cause.
type StageError struct {
	Kind        error
	Stage       string
	Member      string
	Message     string
	Suggestions []string
	// Usage is the generated usage text of the stage, empty when no stage was built.
	Usage string
	cause error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Stage != "" {
		b.WriteString(": ")
		b.WriteString(e.Stage)
		if e.Member != "" {
			b.WriteString(".")
			b.WriteString(e.Member)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Suggestions) > 0 {
		b.WriteString(" (did you mean ")
		b.WriteString(strings.Join(e.Suggestions, ", "))
		b.WriteString("?)")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *StageError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

func newStageError(kind error, stage, member, message string) *StageError {
	return &StageError{Kind: kind, Stage: stage, Member: member, Message: message}
}

// Usage returns the usage text attached to err, if any.
func Usage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Usage
	}
	return ""
}

func IsUsage(err error) bool { return errors.Is(err, ErrUsage) }

func IsArity(err error) bool { return errors.Is(err, ErrArity) }

func IsRange(err error) bool { return errors.Is(err, ErrRange) }

func IsType(err error) bool { return errors.Is(err, ErrType) }

func IsUnresolvedReference(err error) bool { return errors.Is(err, ErrUnresolvedReference) }

func IsScriptNotFound(err error) bool { return errors.Is(err, ErrScriptNotFound) }

func IsExecution(err error) bool { return errors.Is(err, ErrExecution) }
