package pype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/pkg/pype"
	"github.com/askiada/go-pype/pkg/pype/model"
)

func TestState(t *testing.T) {
	t.Parallel()

	st := pype.NewState()
	assert.Nil(t, st.Last())
	assert.Nil(t, st.LastExecuted())

	first, second, third := newProducer(), newProducer(), newConsumer()
	second.Id = "1"
	require.NoError(t, st.Register(first))
	require.NoError(t, st.Register(second))
	require.NoError(t, st.Register(third))
	assert.Error(t, st.Register(third))
	assert.ErrorIs(t, st.Register(nil), pype.ErrScriptMustBeSet)

	assert.Equal(t, 3, st.Len())
	assert.Same(t, third, st.Last())
	assert.Nil(t, st.LastExecuted())
	assert.Same(t, second, st.Latest("producer"))
	assert.Nil(t, st.Latest("nothere"))
	assert.Equal(t, []*pype.Script{first}, st.Lookup("producer", "0"))
	assert.Equal(t, []*pype.Script{first, second, third}, st.Scripts())

	got, err := st.GetScriptObject("producer", "1")
	require.NoError(t, err)
	assert.Same(t, second, got)

	got, err = st.GetScriptObject("producer", "")
	require.NoError(t, err)
	assert.Same(t, second, got)

	_, err = st.GetScriptObject("producer", "9")
	assert.True(t, pype.IsUnresolvedReference(err))
	_, err = st.GetScriptObject("nothere", "")
	assert.True(t, pype.IsUnresolvedReference(err))
}

func TestStatePipes(t *testing.T) {
	t.Parallel()

	st := pype.NewState()
	producer, consumer := newProducer(), newConsumer()
	require.NoError(t, st.Register(producer))
	require.NoError(t, st.Register(consumer))

	require.NoError(t, st.AddPipe(producer, consumer, model.Pipe{Kind: model.PipeAuto, Member: "X", SourceMember: "X"}))
	require.NoError(t, st.AddPipe(producer, consumer, model.Pipe{Kind: model.PipeExplicit, Member: "Pair", SourceMember: "X"}))

	edges, err := st.Edges()
	require.NoError(t, err)
	assert.Equal(t, []string{"producer-0 -> consumer-0 [X, X->Pair]"}, edges)

	upstream, err := st.Upstream(consumer)
	require.NoError(t, err)
	assert.Equal(t, []*pype.Script{producer}, upstream)

	upstream, err = st.Upstream(producer)
	require.NoError(t, err)
	assert.Empty(t, upstream)

	adjacency, err := st.Graph().AdjacencyMap()
	require.NoError(t, err)
	assert.Len(t, adjacency, 2)
	assert.Contains(t, adjacency[0], 1)
}
