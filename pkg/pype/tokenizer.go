package pype

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// Tokenize splits a pipeline command into tokens. A quoted run is a single
// token; an unterminated quote is a usage error.
func Tokenize(line string) ([]string, error) {
	tokens, err := shellquote.Split(line)
	if err != nil {
		stageErr := newStageError(ErrUsage, "", "", "malformed quoting")
		stageErr.cause = err
		return nil, stageErr
	}
	return tokens, nil
}

// TokenizeArgs accepts an argument vector that the shell already split.
func TokenizeArgs(args []string) []string {
	return append([]string(nil), args...)
}

// JoinTokens quotes tokens back into a single command line.
func JoinTokens(tokens []string) string {
	return shellquote.Join(tokens...)
}

// ReadPipelines reads one pipeline per logical line. Blank lines and lines
// starting with # are skipped, and a line ending in a backslash continues on
// the next physical line.
func ReadPipelines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		lines   []string
		pending strings.Builder
		joining bool
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if !joining {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			joining = true
			continue
		}
		pending.WriteString(line)
		lines = append(lines, strings.TrimSpace(pending.String()))
		pending.Reset()
		joining = false
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read pipelines")
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		lines = append(lines, rest)
	}
	return lines, nil
}

// ReadPipelineFile reads the pipelines stored in path.
func ReadPipelineFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open pipeline file %s", path)
	}
	defer file.Close()

	return ReadPipelines(file)
}
