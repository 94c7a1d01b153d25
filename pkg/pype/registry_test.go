package pype_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/pkg/pype"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	assert.Equal(t, []string{"consumer", "failing", "producer"}, reg.Names())

	err := reg.Register("producer", newProducer)
	assert.ErrorIs(t, err, pype.ErrDuplicateScript)
	assert.Error(t, reg.Register("", newProducer))
	assert.Error(t, reg.Register("nil", nil))
	assert.Panics(t, func() { reg.MustRegister("producer", newProducer) })

	first, err := reg.Lookup("producer")
	require.NoError(t, err)
	second, err := reg.Lookup("producer")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "producer", first.Name)
}

func TestRegistryLookupNotFound(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)

	tcs := map[string]struct {
		name string
		want []string
	}{
		"subsequence":  {name: "prod", want: []string{"producer"}},
		"typo":         {name: "consumre", want: []string{"consumer"}},
		"case":         {name: "FAILING", want: []string{"failing"}},
		"far from all": {name: "zzzzzzzzzz", want: nil},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := reg.Lookup(tc.name)
			require.Error(t, err)
			assert.True(t, pype.IsScriptNotFound(err))

			var stageErr *pype.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tc.want, stageErr.Suggestions)
		})
	}
}

func TestRegistryNilConstructorResult(t *testing.T) {
	t.Parallel()

	reg := pype.NewRegistry()
	reg.MustRegister("empty", func() *pype.Script { return nil })
	_, err := reg.Lookup("empty")
	assert.ErrorIs(t, err, pype.ErrScriptMustBeSet)
}

func TestRegistryConcurrentLookup(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Lookup("consumer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
