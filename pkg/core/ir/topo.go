// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"slices"

	"github.com/pkg/errors"
)

// SortVariant selects one of the valid topological linearizations of the
// operator nodes. All variants respect data dependencies (a producer always
// comes before its consumers) and are deterministic for a given graph, but
// they interleave independent operators differently. Analyses that number
// execution steps (e.g., lifetime collection in memopt) are sensitive to the
// chosen variant.
type SortVariant int

//go:generate go tool enumer -type=SortVariant -trimprefix=Sort -output=gen_sortvariant_enumer.go topo.go

const (
	// SortDefault emits, among all operators whose dependencies are
	// satisfied, the one inserted earliest. It is the closest order to the
	// graph's construction order.
	SortDefault SortVariant = iota

	// SortDFS emits operators in depth-first order: an operator's chain of
	// consumers is followed as deep as possible before backtracking.
	SortDFS

	// SortBFS emits operators level by level: all operators with satisfied
	// dependencies, then all operators those unlock, and so on.
	SortBFS
)

// TopologicalOrder returns the operator nodes (only) in the linearization
// selected by variant. Variable nodes never appear in the result.
//
// The graph is expected to be acyclic; a dependency cycle among operators
// returns an error, since it indicates a malformed program snapshot.
func (g *Graph) TopologicalOrder(variant SortVariant) ([]*Node, error) {
	if !variant.IsASortVariant() {
		return nil, errors.Errorf("graph %q: invalid topological sort variant %d", g.name, variant)
	}
	if variant == SortDFS {
		return g.topoDFS()
	}
	return g.topoKahn(variant == SortBFS)
}

// opSuccessors returns the operators consuming any output variable of op, in
// incidence order. An operator may appear more than once. In-place operators
// (same variable read and written) don't list themselves.
func opSuccessors(op *Node) []*Node {
	var succs []*Node
	for _, outVar := range op.outs {
		for _, consumer := range outVar.outs {
			if consumer == op {
				continue
			}
			succs = append(succs, consumer)
		}
	}
	return succs
}

// topoKahn implements Kahn's algorithm. With byLevel unset the pending
// operator with the smallest insertion id goes next; with byLevel set whole
// generations of pending operators are emitted at once, each generation
// ordered by insertion id.
func (g *Graph) topoKahn(byLevel bool) ([]*Node, error) {
	degree := make(map[*Node]int, len(g.ops))
	for _, op := range g.ops {
		for _, inVar := range op.ins {
			// One dependency per producing operator, self excluded.
			for _, producer := range inVar.ins {
				if producer != op {
					degree[op]++
				}
			}
		}
	}
	var ready []*Node
	for _, op := range g.ops {
		if degree[op] == 0 {
			ready = append(ready, op)
		}
	}

	order := make([]*Node, 0, len(g.ops))
	release := func(op *Node, next *[]*Node) {
		for _, succ := range opSuccessors(op) {
			degree[succ]--
			if degree[succ] == 0 {
				*next = append(*next, succ)
			}
		}
	}
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b *Node) int { return a.id - b.id })
		if byLevel {
			var next []*Node
			for _, op := range ready {
				order = append(order, op)
				release(op, &next)
			}
			ready = next
		} else {
			op := ready[0]
			ready = ready[1:]
			order = append(order, op)
			release(op, &ready)
		}
	}
	if len(order) != len(g.ops) {
		return nil, errors.Errorf("graph %q: dependency cycle among operators, only %d of %d can be ordered",
			g.name, len(order), len(g.ops))
	}
	return order, nil
}

// topoDFS implements depth-first topological sorting: reverse finishing
// order of a DFS over the operator dependency edges, rooted at each operator
// in insertion order.
func (g *Graph) topoDFS() ([]*Node, error) {
	const (
		white = iota // Unvisited.
		gray         // On the current DFS path.
		black        // Finished.
	)
	color := make(map[*Node]int, len(g.ops))
	finished := make([]*Node, 0, len(g.ops))

	type frame struct {
		op    *Node
		succs []*Node
		next  int
	}
	for _, root := range g.ops {
		if color[root] != white {
			continue
		}
		stack := []frame{{op: root, succs: opSuccessors(root)}}
		color[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.succs) {
				succ := top.succs[top.next]
				top.next++
				switch color[succ] {
				case white:
					color[succ] = gray
					stack = append(stack, frame{op: succ, succs: opSuccessors(succ)})
				case gray:
					return nil, errors.Errorf("graph %q: dependency cycle among operators through %s",
						g.name, succ)
				}
				continue
			}
			color[top.op] = black
			finished = append(finished, top.op)
			stack = stack[:len(stack)-1]
		}
	}
	slices.Reverse(finished)
	return finished, nil
}
