package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pype/internal/store"
)

func TestAppendStoreOrder(t *testing.T) {
	t.Parallel()

	st := store.NewAppendStore[string, int]()

	for i, key := range []string{"c", "a", "b"} {
		require.NoError(t, st.AddVertex(key, i, graph.VertexProperties{}))
	}
	assert.ErrorIs(t, st.AddVertex("a", 9, graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	keys, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keys)

	count, err := st.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	v, props, err := st.Vertex("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.NotNil(t, props.Attributes)

	_, _, err = st.Vertex("z")
	assert.ErrorIs(t, err, graph.ErrVertexNotFound)
}

func TestAppendStoreEdges(t *testing.T) {
	t.Parallel()

	st := store.NewAppendStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, graph.Store[string, string](st), graph.Directed())
	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddVertex(v))
	}
	require.NoError(t, g.AddEdge("b", "c", graph.EdgeAttribute("label", "first")))
	require.NoError(t, g.AddEdge("a", "b"))
	assert.ErrorIs(t, g.AddEdge("a", "b"), graph.ErrEdgeAlreadyExists)

	require.NoError(t, g.UpdateEdge("b", "c", graph.EdgeAttribute("label", "updated")))

	edges, err := st.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "b", edges[0].Source)
	assert.Equal(t, "updated", edges[0].Properties.Attributes["label"])
	assert.Equal(t, "a", edges[1].Source)

	_, err = st.Edge("c", "a")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)
	assert.ErrorIs(t, st.UpdateEdge("c", "a", graph.Edge[string]{}), graph.ErrEdgeNotFound)
}

func TestAppendStoreIsAppendOnly(t *testing.T) {
	t.Parallel()

	st := store.NewAppendStore[string, string]()
	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, st.AddVertex("b", "b", graph.VertexProperties{}))
	require.NoError(t, st.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	assert.ErrorIs(t, st.RemoveVertex("a"), store.ErrAppendOnly)
	assert.ErrorIs(t, st.RemoveEdge("a", "b"), store.ErrAppendOnly)

	count, err := st.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppendStoreUpdateVertex(t *testing.T) {
	t.Parallel()

	st := store.NewAppendStore[string, string]()
	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, st.UpdateVertex("a", graph.VertexAttribute("style", "dashed")))

	_, props, err := st.Vertex("a")
	require.NoError(t, err)
	assert.Equal(t, "dashed", props.Attributes["style"])

	assert.ErrorIs(t, st.UpdateVertex("z"), graph.ErrVertexNotFound)
}
