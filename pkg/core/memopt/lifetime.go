// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package memopt

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/memplan/pkg/core/ir"
)

// Interval is the closed range of execution steps [Start, End] during which
// a variable's buffer must remain valid. Always Start <= End.
type Interval struct {
	Start, End int
}

// Overlaps returns whether the two closed intervals share at least one step.
func (a Interval) Overlaps(b Interval) bool {
	return b.End >= a.Start && a.End >= b.Start
}

// feedOpType is the operator type marking external inputs: its outputs are
// supplied by the caller and may be read at any later point, so they are
// never reclaimed.
const feedOpType = "feed"

// fetchOpType is the terminal sink operator collecting program outputs.
const fetchOpType = "fetch"

// CollectLifecycles traverses the operator nodes of g in the topological
// linearization selected by variant, numbering them 0, 1, 2, ... and returns
// per variable the interval of steps during which it is alive: from the step
// that first references it to the last step that does.
//
// Output variables of "feed" operators get the interval [0, math.MaxInt] so
// they never become reuse candidates. Persistent variables (parameters) are
// never entered in the map; their aggregate byte footprint is only logged for
// diagnostics, and a negative dimension on one of them is a fatal error --
// except for variables touched by a "fetch" sink, which are skipped from the
// accounting entirely (their tensor description is not meaningful).
func CollectLifecycles(g *ir.Graph, variant ir.SortVariant) (map[string]Interval, error) {
	order, err := g.TopologicalOrder(variant)
	if err != nil {
		return nil, err
	}
	lifecycles := make(map[string]Interval)
	var persistentBytes uintptr
	for step, op := range order {
		if op.Type() == feedOpType {
			for _, node := range op.Outputs() {
				if _, found := lifecycles[node.Name()]; !found {
					lifecycles[node.Name()] = Interval{Start: 0, End: math.MaxInt}
				}
			}
			continue
		}
		for _, node := range referencedVars(op) {
			vtype := node.VarType()
			if vtype == nil {
				continue
			}
			if vtype.Persistent {
				if touchedByFetch(node) {
					continue
				}
				numElements := 1
				for _, dim := range vtype.Dimensions {
					if dim < 0 {
						return nil, errors.Errorf(
							"graph %q: persistent variable %q has negative dimension in shape %v",
							g.Name(), node.Name(), vtype.Dimensions)
					}
					numElements *= dim
				}
				persistentBytes += uintptr(numElements) * vtype.DType.Memory()
				continue
			}
			name := node.Name()
			if life, found := lifecycles[name]; found {
				life.End = max(life.End, step)
				lifecycles[name] = life
			} else {
				lifecycles[name] = Interval{Start: step, End: step}
			}
		}
	}
	klog.Infof("graph %q: persistent parameters take %s", g.Name(), humanize.Bytes(uint64(persistentBytes)))
	return lifecycles, nil
}

// referencedVars returns the variables an operator touches: its inputs
// followed by its outputs.
func referencedVars(op *ir.Node) []*ir.Node {
	refs := make([]*ir.Node, 0, len(op.Inputs())+len(op.Outputs()))
	refs = append(refs, op.Inputs()...)
	refs = append(refs, op.Outputs()...)
	return refs
}

// touchedByFetch returns whether any operator incident to the variable node
// is a "fetch" sink.
func touchedByFetch(node *ir.Node) bool {
	for _, op := range node.Inputs() {
		if op.IsOp() && op.Type() == fetchOpType {
			return true
		}
	}
	for _, op := range node.Outputs() {
		if op.IsOp() && op.Type() == fetchOpType {
			return true
		}
	}
	return false
}
