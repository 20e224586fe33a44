package topology

import "fmt"

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// naming a node involved in the first cycle found.
func (s *Store) DetectCycles() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the recursion stack of the current traversal.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node '%s'", id)
		}

		temporary[id] = true
		for _, dependent := range s.dependents[id] {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range s.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Order returns the node IDs in topological order. Among nodes that become
// ready at the same time, insertion order wins, so a chain always comes back
// in its natural order.
func (s *Store) Order() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indegree := make(map[string]int, len(s.order))
	position := make(map[string]int, len(s.order))
	for i, id := range s.order {
		indegree[id] = len(s.deps[id])
		position[id] = i
	}

	var ready []string
	for _, id := range s.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(s.order))
	for len(ready) > 0 {
		// Pick the earliest-inserted ready node.
		best := 0
		for i := range ready {
			if position[ready[i]] < position[ready[best]] {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		out = append(out, id)

		for _, dependent := range s.dependents[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(out) != len(s.order) {
		for _, id := range s.order {
			if indegree[id] > 0 {
				return nil, fmt.Errorf("cycle detected involving node '%s'", id)
			}
		}
	}
	return out, nil
}
