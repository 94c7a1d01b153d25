package pype

import (
	"strings"
	"unicode"

	"github.com/askiada/go-pype/pkg/pype/model"
)

const (
	flagPipe   = "--pipe"
	flagNoLog  = "--nolog"
	flagNoAuto = "--noauto"
	flagQuery  = "--query"
	flagHelp   = "--help"
	flagDoc    = "--doc"
	flagHTML   = "--html"

	// RootScriptName is the name of the pipeline itself, accepted as a leading token.
	RootScriptName  = "pype"
	defaultID       = "0"
	pushedSuffix    = "@"
	referencePrefix = "@"
)

// ParsePipeline extracts the global flags from tokens and splits the rest into
// stage segments at every --pipe.
func ParsePipeline(tokens []string) (model.PipelineSpec, error) {
	var (
		spec     model.PipelineSpec
		segments [][]string
		current  []string
		requests = map[int]model.Request{}
	)

	request := func(req model.Request) {
		if _, ok := requests[len(segments)]; !ok {
			requests[len(segments)] = req
		}
	}

	for _, tok := range tokens {
		switch tok {
		case flagNoLog:
			spec.GlobalFlags.NoLog = true
		case flagNoAuto:
			spec.GlobalFlags.NoAuto = true
		case flagQuery:
			spec.GlobalFlags.Query = true
		case flagHelp:
			spec.GlobalFlags.Help = true
			request(model.RequestHelp)
		case flagDoc:
			spec.GlobalFlags.Doc = true
			request(model.RequestDoc)
		case flagHTML:
			spec.GlobalFlags.Html = true
			request(model.RequestHTML)
		case flagPipe:
			if len(current) == 0 {
				return model.PipelineSpec{}, newStageError(ErrUsage, "", "", "empty stage before --pipe")
			}
			segments = append(segments, current)
			current = nil
		default:
			current = append(current, tok)
		}
	}
	if len(current) > 0 {
		segments = append(segments, current)
	} else if len(segments) > 0 {
		return model.PipelineSpec{}, newStageError(ErrUsage, "", "", "empty stage after --pipe")
	}

	if len(segments) > 0 && segments[0][0] == RootScriptName {
		segments[0] = segments[0][1:]
		if len(segments[0]) == 0 {
			if len(segments) > 1 {
				return model.PipelineSpec{}, newStageError(ErrUsage, "", "", "empty stage before --pipe")
			}
			segments = nil
		}
	}

	for idx, segment := range segments {
		stage, err := parseStage(segment)
		if err != nil {
			return model.PipelineSpec{}, err
		}
		stage.Request = requests[idx]
		spec.Stages = append(spec.Stages, stage)
	}

	return spec, nil
}

func parseStage(segment []string) (model.StageSpec, error) {
	name := segment[0]
	if isOptionToken(name) {
		return model.StageSpec{}, newStageError(ErrUsage, "", "", "expected a stage name, got "+name)
	}

	stage := model.StageSpec{
		ScriptName:      name,
		Id:              defaultID,
		RawOptionTokens: make([]string, 0, len(segment)-1),
	}
	seen := map[string]bool{}
	for _, tok := range segment[1:] {
		if isOptionToken(tok) && len(tok) > 2 && strings.HasSuffix(tok, pushedSuffix) {
			tok = strings.TrimSuffix(tok, pushedSuffix)
			if option := tok[1:]; !seen[option] {
				seen[option] = true
				stage.PushedOptions = append(stage.PushedOptions, option)
			}
		}
		stage.RawOptionTokens = append(stage.RawOptionTokens, tok)
	}

	// a piped id is only known once the stage resolves
	for i, tok := range stage.RawOptionTokens {
		if tok != "-"+idOption || i+1 >= len(stage.RawOptionTokens) {
			continue
		}
		if next := stage.RawOptionTokens[i+1]; !isOptionToken(next) && !strings.HasPrefix(next, referencePrefix) {
			stage.Id = next
		}
	}

	return stage, nil
}

// isOptionToken reports whether tok names an option. Negative numbers are values.
func isOptionToken(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	r := rune(tok[1])
	return unicode.IsLetter(r) || r == '_'
}
