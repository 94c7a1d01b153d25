package pype

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/errors"
)

const maxSuggestions = 3

// Constructor builds a fresh, unparsed stage instance.
type Constructor func() *Script

// Registry resolves stage names to constructors. It is populated once at
// startup and is safe for concurrent lookups.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a stage constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	name = strings.TrimSpace(name)
	if name == "" || ctor == nil {
		return errors.New("stage name and constructor are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return errors.Wrap(ErrDuplicateScript, name)
	}
	r.constructors[name] = ctor
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Lookup builds a new instance of the named stage.
func (r *Registry) Lookup(name string) (*Script, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		err := newStageError(ErrScriptNotFound, name, "", "no such stage")
		err.Suggestions = suggest(name, r.Names())
		return nil, err
	}

	script := ctor()
	if script == nil {
		return nil, errors.Wrapf(ErrScriptMustBeSet, "constructor of %s returned nil", name)
	}
	script.Name = name
	return script, nil
}

// Names returns the registered stage names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggest returns the closest candidates to target, best first.
func suggest(target string, candidates []string) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	sort.Sort(ranks)
	var out []string
	for _, rank := range ranks {
		if len(out) == maxSuggestions {
			return out
		}
		out = append(out, rank.Target)
	}
	if len(out) > 0 {
		return out
	}

	// typos are not subsequences, fall back to edit distance
	limit := len(target)/3 + 1
	type scored struct {
		name     string
		distance int
	}
	var nearby []scored
	for _, candidate := range candidates {
		d := fuzzy.LevenshteinDistance(strings.ToLower(target), strings.ToLower(candidate))
		if d <= limit {
			nearby = append(nearby, scored{candidate, d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].distance < nearby[j].distance })
	for _, c := range nearby {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}
