// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package memopt

import (
	"github.com/pkg/errors"

	"github.com/gomlx/memplan/pkg/core/ir"
	"github.com/gomlx/memplan/pkg/support/sets"
)

// unsafeReuseOps lists operator types whose semantics are incompatible with
// buffer sharing: control-flow subgraphs, opaque engines, LOD manipulation,
// terminal sinks and zero-copy passthroughs. Any variable read or written by
// one of them is excluded from reuse.
var unsafeReuseOps = sets.MakeWith(
	"while",
	"conditional_block",
	"tensorrt_engine",
	"conditional_block_infer",
	"merge_lod_tensor_infer",
	"merge_lod_tensor",
	"equal",
	"sequence_pool",
	"recurrent",
	"lod_reset",
	fetchOpType,
	"share_data",
)

// fakeBatchSize replaces dynamic (-1) dimensions when estimating sizes: the
// plan only needs relative sizes to pick cluster representatives, and
// dynamic axes scale all candidates alike.
const fakeBatchSize = 1

// CollectVarSizes estimates the byte footprint of every variable of g that
// is eligible for buffer reuse and returns a table name -> bytes.
//
// Eligible means: a dense tensor, not persistent, and not touched by any
// operator in unsafeReuseOps. Dynamic dimensions (-1) count as fakeBatchSize;
// the byte width comes from the variable's dtype. Variables left out of the
// table silently drop out of reuse candidacy.
func CollectVarSizes(g *ir.Graph) (map[string]uintptr, error) {
	blacklist := sets.Make[string]()
	for _, node := range g.Nodes() {
		if !isDenseTensorVar(node) {
			continue
		}
		unsafe, err := touchedByUnsafeOp(g, node)
		if err != nil {
			return nil, err
		}
		if unsafe {
			blacklist.Insert(node.Name())
		}
	}

	table := make(map[string]uintptr)
	for _, node := range g.Nodes() {
		if !isDenseTensorVar(node) || blacklist.Has(node.Name()) {
			continue
		}
		vtype := node.VarType()
		if vtype.Persistent {
			continue
		}
		numElements := 1
		for _, dim := range vtype.Dimensions {
			if dim < 0 {
				dim = fakeBatchSize
			}
			numElements *= dim
		}
		table[node.Name()] = uintptr(numElements) * vtype.DType.Memory()
	}
	return table, nil
}

// isDenseTensorVar returns whether node is a variable carrying a dense
// tensor type descriptor.
func isDenseTensorVar(node *ir.Node) bool {
	return node.IsVar() && node.VarType() != nil && node.VarType().Kind == ir.DenseTensor
}

// touchedByUnsafeOp reports whether any operator incident to the variable
// node has a type in unsafeReuseOps. A non-operator entry in the variable's
// incidence lists means the graph is malformed and is a fatal error.
func touchedByUnsafeOp(g *ir.Graph, node *ir.Node) (bool, error) {
	for _, incident := range [2][]*ir.Node{node.Inputs(), node.Outputs()} {
		for _, op := range incident {
			if !op.IsOp() {
				return false, errors.Errorf(
					"graph %q: variable %q lists non-operator node %s in its incidence lists",
					g.Name(), node.Name(), op)
			}
			if unsafeReuseOps.Has(op.Type()) {
				return true, nil
			}
		}
	}
	return false, nil
}
