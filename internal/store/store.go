// Package store provides the graph storage used to describe pipeline topologies.
package store

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"
)

// CustomStore is a graph.Store that keeps vertices and edges in insertion order
// and allows vertex properties to be updated in place.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
	Successors(k K) ([]K, error)
	Predecessors(k K) ([]K, error)
}

// OrderedStore is an in-memory CustomStore.
type OrderedStore[K comparable, T any] struct {
	lock             sync.RWMutex
	vertices         map[K]T
	vertexProperties map[K]*graph.VertexProperties
	vertexOrder      []K

	// outEdges and inEdges hold the edges of every vertex, in the order they were added.
	outEdges map[K][]graph.Edge[K] // source -> targets
	inEdges  map[K][]graph.Edge[K] // target -> sources
}

// NewOrderedStore creates an empty OrderedStore.
func NewOrderedStore[K comparable, T any]() CustomStore[K, T] {
	return &OrderedStore[K, T]{
		vertices:         make(map[K]T),
		vertexProperties: make(map[K]*graph.VertexProperties),
		outEdges:         make(map[K][]graph.Edge[K]),
		inEdges:          make(map[K][]graph.Edge[K]),
	}
}

func (s *OrderedStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}

	s.vertices[k] = t
	s.vertexProperties[k] = &p
	s.vertexOrder = append(s.vertexOrder, k)

	return nil
}

func (s *OrderedStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]K, len(s.vertexOrder))
	copy(hashes, s.vertexOrder)

	return hashes, nil
}

func (s *OrderedStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *OrderedStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.vertexProperties[k], nil
}

func (s *OrderedStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.vertices, k)
	delete(s.vertexProperties, k)

	for i, hash := range s.vertexOrder {
		if hash == k {
			s.vertexOrder = append(s.vertexOrder[:i], s.vertexOrder[i+1:]...)

			break
		}
	}

	return nil
}

// UpdateVertex applies options to the properties of vertex k.
func (s *OrderedStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.vertexProperties[k]
	if !ok {
		return graph.ErrVertexNotFound
	}

	for _, opt := range options {
		opt(p)
	}

	return nil
}

func (s *OrderedStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if indexOf(s.outEdges[sourceHash], targetHash) >= 0 {
		return graph.ErrEdgeAlreadyExists
	}

	s.outEdges[sourceHash] = append(s.outEdges[sourceHash], edge)
	s.inEdges[targetHash] = append(s.inEdges[targetHash], edge)

	return nil
}

func (s *OrderedStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := indexOf(s.outEdges[sourceHash], targetHash)
	if out < 0 {
		return graph.ErrEdgeNotFound
	}
	s.outEdges[sourceHash][out] = edge

	for i, e := range s.inEdges[targetHash] {
		if e.Source == sourceHash {
			s.inEdges[targetHash][i] = edge

			break
		}
	}

	return nil
}

func (s *OrderedStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if i := indexOf(s.outEdges[sourceHash], targetHash); i >= 0 {
		s.outEdges[sourceHash] = append(s.outEdges[sourceHash][:i], s.outEdges[sourceHash][i+1:]...)
	}

	for i, e := range s.inEdges[targetHash] {
		if e.Source == sourceHash {
			s.inEdges[targetHash] = append(s.inEdges[targetHash][:i], s.inEdges[targetHash][i+1:]...)

			break
		}
	}

	return nil
}

func (s *OrderedStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	i := indexOf(s.outEdges[sourceHash], targetHash)
	if i < 0 {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return s.outEdges[sourceHash][i], nil
}

// ListEdges returns every edge, grouped by source vertex in vertex insertion order.
func (s *OrderedStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)
	for _, source := range s.vertexOrder {
		res = append(res, s.outEdges[source]...)
	}

	return res, nil
}

// Successors returns the targets of k's outgoing edges in the order the edges were added.
func (s *OrderedStore[K, T]) Successors(k K) ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.vertices[k]; !ok {
		return nil, graph.ErrVertexNotFound
	}

	res := make([]K, 0, len(s.outEdges[k]))
	for _, e := range s.outEdges[k] {
		res = append(res, e.Target)
	}

	return res, nil
}

// Predecessors returns the sources of k's incoming edges in the order the edges were added.
func (s *OrderedStore[K, T]) Predecessors(k K) ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.vertices[k]; !ok {
		return nil, graph.ErrVertexNotFound
	}

	res := make([]K, 0, len(s.inEdges[k]))
	for _, e := range s.inEdges[k] {
		res = append(res, e.Source)
	}

	return res, nil
}

// CreatesCycle is a fastpath version of [graph.CreatesCycle] walking inEdges
// instead of building a predecessor map.
func (s *OrderedStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", source, err)
	}

	if _, _, err := s.Vertex(target); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", target, err)
	}

	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []K{source}
	visited := make(map[K]struct{})

	for len(stack) > 0 {
		currentHash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[currentHash]; ok {
			continue
		}
		// If the target is an ancestor of the source, the new edge closes a cycle.
		if currentHash == target {
			return true, nil
		}

		visited[currentHash] = struct{}{}

		for _, e := range s.inEdges[currentHash] {
			stack = append(stack, e.Source)
		}
	}

	return false, nil
}

func indexOf[K comparable](edges []graph.Edge[K], target K) int {
	for i, e := range edges {
		if e.Target == target {
			return i
		}
	}

	return -1
}

var _ CustomStore[string, string] = (*OrderedStore[string, string])(nil)
