package pype

import (
	"io"
	"log/slog"

	"github.com/askiada/go-pype/pkg/pype/model"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithOutput sets the sink for usage, documentation and error text.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) {
		p.out = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ExitOnError makes a failed run terminate the process instead of returning the error.
func ExitOnError(exit bool) Option {
	return func(p *Pipeline) {
		p.exitOnError = exit
	}
}

// WithExitFunc replaces os.Exit for the exit-on-error policy.
func WithExitFunc(fn func(code int)) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.exit = fn
		}
	}
}

func WithSession(session *Session) Option {
	return func(p *Pipeline) {
		p.session = session
	}
}

// WithObservers registers options notified along every run.
func WithObservers(observers ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, observers...)
	}
}

// NoAuto disables auto-pipe for every run, as --noauto does for one.
func NoAuto(noAuto bool) Option {
	return func(p *Pipeline) {
		p.noAuto = noAuto
	}
}

// NoLog silences informational logging for every run, as --nolog does for one.
func NoLog(noLog bool) Option {
	return func(p *Pipeline) {
		p.noLog = noLog
	}
}

// CheckWorkers bounds the number of pipelines Check validates at once.
func CheckWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.checkWorkers = n
		}
	}
}
