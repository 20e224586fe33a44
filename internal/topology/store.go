// Package topology stores the static structure of a task graph: its nodes and
// the dependency edges between them.
//
// The topology is write-once-read-many. It is populated while the graph is
// built, sealed, and then only queried while the run executes. Mutable
// execution state lives in package nodestate.
package topology

import (
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridetl/internal/node"
)

// ErrSealed is returned by mutating calls after Seal.
var ErrSealed = errors.New("topology is sealed")

// Store keeps nodes and edges in maps guarded by a RWMutex. Insertion order
// is remembered so that queries and the topological order are deterministic.
type Store struct {
	mu         sync.RWMutex
	sealed     bool
	order      []string
	nodes      map[string]*node.Node
	deps       map[string][]string // Key: node ID, Value: dependency IDs in insertion order
	dependents map[string][]string // Key: node ID, Value: dependent IDs in insertion order
}

// New creates a new, empty topology.
func New() *Store {
	return &Store{
		nodes:      make(map[string]*node.Node),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddNode registers n. Node IDs must be unique.
func (s *Store) AddNode(n *node.Node) error {
	if n == nil || n.ID == "" {
		return errors.New("node must have a non-empty ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("duplicate node '%s'", n.ID)
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	return nil
}

// AddDependency records that 'to' depends on 'from'. Both nodes must exist.
func (s *Store) AddDependency(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	if _, exists := s.nodes[from]; !exists {
		return fmt.Errorf("dependency source node '%s' not found in topology", from)
	}
	if _, exists := s.nodes[to]; !exists {
		return fmt.Errorf("dependency target node '%s' not found in topology", to)
	}
	for _, d := range s.deps[to] {
		if d == from {
			return nil
		}
	}
	s.deps[to] = append(s.deps[to], from)
	s.dependents[from] = append(s.dependents[from], to)
	return nil
}

// Seal freezes the topology. Later AddNode and AddDependency calls fail.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Node retrieves a single node by its ID.
func (s *Store) Node(id string) (*node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	return n, ok
}

// AllNodes returns every node in insertion order.
func (s *Store) AllNodes() []*node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node.Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id])
	}
	return nodes
}

// DependenciesOf returns the IDs the given node directly depends on.
func (s *Store) DependenciesOf(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[id]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", id)
	}
	return append([]string{}, s.deps[id]...), nil
}

// DependentsOf returns the IDs that directly depend on the given node.
func (s *Store) DependentsOf(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[id]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", id)
	}
	return append([]string{}, s.dependents[id]...), nil
}

// Ancestors returns every node reachable upstream of id, excluding id.
func (s *Store) Ancestors(id string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[id]; !exists {
		return nil, fmt.Errorf("node '%s' not found in topology", id)
	}
	seen := make(map[string]struct{})
	stack := append([]string{}, s.deps[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		stack = append(stack, s.deps[cur]...)
	}
	return seen, nil
}
