package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-filterchain/internal/store"
)

func newGraph(t *testing.T) (graph.Graph[string, string], store.CustomStore[string, string]) {
	t.Helper()

	s := store.NewOrderedStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.PreventCycles())

	return g, s
}

func TestOrderedStoreKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)

	for _, name := range []string{"c", "a", "b", "d"} {
		require.NoError(t, g.AddVertex(name))
	}

	require.NoError(t, g.AddEdge("c", "d"))
	require.NoError(t, g.AddEdge("c", "a"))
	require.NoError(t, g.AddEdge("c", "b"))

	vertices, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, vertices)

	successors, err := s.Successors("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b"}, successors)

	predecessors, err := s.Predecessors("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, predecessors)
}

func TestOrderedStorePreventsCycles(t *testing.T) {
	t.Parallel()

	g, _ := newGraph(t)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddVertex(name))
	}

	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	assert.ErrorIs(t, g.AddEdge("c", "a"), graph.ErrEdgeCreatesCycle)
	assert.ErrorIs(t, g.AddEdge("a", "b"), graph.ErrEdgeAlreadyExists)
}

func TestOrderedStoreUpdateVertex(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	require.NoError(t, g.AddVertex("a"))

	err := s.UpdateVertex("a", graph.VertexWeight(5), graph.VertexAttribute("xlabel", "5ms"))
	require.NoError(t, err)

	_, props, err := g.VertexWithProperties("a")
	require.NoError(t, err)
	assert.Equal(t, 5, props.Weight)
	assert.Equal(t, "5ms", props.Attributes["xlabel"])

	assert.ErrorIs(t, s.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestOrderedStoreRemove(t *testing.T) {
	t.Parallel()

	g, s := newGraph(t)
	require.NoError(t, g.AddVertex("a"))
	require.NoError(t, g.AddVertex("b"))
	require.NoError(t, g.AddEdge("a", "b"))

	assert.ErrorIs(t, s.RemoveVertex("a"), graph.ErrVertexHasEdges)

	require.NoError(t, s.RemoveEdge("a", "b"))
	require.NoError(t, s.RemoveVertex("a"))

	vertices, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, vertices)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	assert.Empty(t, edges)
}
