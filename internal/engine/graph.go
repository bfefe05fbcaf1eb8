package engine

import (
	"fmt"
	"sort"

	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// node is a vertex in the assertion dependency graph.
type node struct {
	id         string
	order      int
	dependents []*node
	indegree   int
}

// topologicalOrder computes a total execution order for the assertions using
// Kahn's algorithm. The order is stable: among assertions whose dependencies
// are equally satisfied, input order wins. A CycleError is returned when the
// graph cannot be fully ordered.
func topologicalOrder(assertions []Assertion) ([]string, error) {
	nodes := make(map[string]*node, len(assertions))
	for i, a := range assertions {
		id := a.ID()
		if id == "" {
			return nil, n8nerrors.NewValidationError("assertions", "assertion id cannot be empty", nil)
		}
		if _, exists := nodes[id]; exists {
			return nil, n8nerrors.NewValidationError("assertions", fmt.Sprintf("duplicate assertion id %q", id), nil)
		}
		nodes[id] = &node{id: id, order: i}
	}

	for _, a := range assertions {
		target := nodes[a.ID()]
		for _, dep := range a.DependsOn() {
			source, ok := nodes[dep]
			if !ok {
				return nil, n8nerrors.NewValidationError("assertions", fmt.Sprintf("unknown dependency %q of %q", dep, a.ID()), nil)
			}
			source.dependents = append(source.dependents, target)
			target.indegree++
		}
	}

	var ready []*node
	for _, a := range assertions {
		n := nodes[a.ID()]
		if n.indegree == 0 {
			ready = append(ready, n)
		}
	}
	sortByInput(ready)

	order := make([]string, 0, len(assertions))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current.id)

		var unlocked []*node
		for _, dependent := range current.dependents {
			dependent.indegree--
			if dependent.indegree == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sortByInput(ready)
		}
	}

	if len(order) != len(assertions) {
		var stuck []string
		for _, a := range assertions {
			if nodes[a.ID()].indegree > 0 {
				stuck = append(stuck, a.ID())
			}
		}
		return nil, n8nerrors.NewCycleError(stuck)
	}

	return order, nil
}

func sortByInput(nodes []*node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].order < nodes[j].order
	})
}
