package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/pkg/errors"

	"github.com/askiada/go-pype/pkg/pype"
)

const consolePrompt = "pype>"

// prompter reads one pipeline from the user.
type prompter interface {
	Ask(message string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(message string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    pype.RootUsage,
	}, &out)
	return out, err
}

// console runs pipelines until the user quits. A failing pipeline is reported
// and the loop goes on.
func (a *app) console(ctx context.Context, p *pype.Pipeline, logger *slog.Logger) int {
	fmt.Fprintln(a.stdout, "pype console, type exit to quit")
	for {
		if err := ctx.Err(); err != nil {
			return 0
		}

		line, err := a.prompter.Ask(consolePrompt)
		switch {
		case errors.Is(err, terminal.InterruptErr), errors.Is(err, io.EOF):
			return 0
		case err != nil:
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return 1
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return 0
		}

		run, err := p.RunString(ctx, line)
		if err != nil {
			logger.Debug("pipeline failed", "run", run.ID.String(), "error", err)
			continue
		}
		logger.Debug("pipeline finished", "run", run.ID.String(), "status", run.Status.String())
	}
}
