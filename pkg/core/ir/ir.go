// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the operator-graph representation consumed by the memory
// planning passes (see pkg/core/memopt).
//
// A Graph is a bipartite incidence structure: operator nodes read and write
// variable nodes, and every variable node records the operators that produce
// and consume it. Variables optionally carry a VarType describing their
// shape, element data type (a gopjrt dtypes.DType), persistence and container
// kind; typeless variables are allowed and simply opt out of any
// size-sensitive analysis.
//
// Graphs are built incrementally with Graph.AddVariable and Graph.AddOp.
// Building errors are thrown with panic (see github.com/gomlx/exceptions),
// following the same convention as graph construction in GoMLX: it keeps call
// sites readable, and construction happens early where a stack trace is the
// most useful diagnostic. Analysis entry points (Graph.TopologicalOrder and
// everything in memopt) return errors instead.
package ir

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// NodeKind discriminates operator nodes from variable nodes.
type NodeKind int

const (
	// KindOperator is a node representing a computation reading input
	// variables and writing output variables.
	KindOperator NodeKind = iota

	// KindVariable is a node representing a named value flowing between
	// operators.
	KindVariable
)

// ContainerKind describes how a variable's value is laid out.
type ContainerKind int

const (
	// DenseTensor is a contiguous tensor. Only dense tensors are
	// candidates for buffer reuse.
	DenseTensor ContainerKind = iota

	// Opaque is any other container (selected rows, tensor arrays,
	// readers, ...). Opaque variables are never sized.
	Opaque
)

// VarType describes a variable's value: its shape, element type, and how its
// storage behaves.
type VarType struct {
	// Dimensions of the variable, in order. A -1 marks a dynamic axis whose
	// extent is only known at run time (typically the batch axis).
	Dimensions []int

	// DType is the element data type.
	DType dtypes.DType

	// Persistent marks parameters/weights: storage that lives for the whole
	// program and is never reused.
	Persistent bool

	// Kind of container holding the value.
	Kind ContainerKind
}

// String implements fmt.Stringer.
func (vt *VarType) String() string {
	if vt == nil {
		return "(untyped)"
	}
	var attrs []string
	if vt.Persistent {
		attrs = append(attrs, "persistent")
	}
	if vt.Kind == Opaque {
		attrs = append(attrs, "opaque")
	}
	suffix := ""
	if len(attrs) > 0 {
		suffix = " [" + strings.Join(attrs, ", ") + "]"
	}
	return fmt.Sprintf("(%s)%v%s", vt.DType, vt.Dimensions, suffix)
}

// Node is either an operator or a variable in a Graph. Use IsOp/IsVar to
// discriminate, and the incidence lists Inputs/Outputs to navigate: for an
// operator they hold variable nodes (its reads and writes, in order), for a
// variable they hold operator nodes (its producers and consumers).
type Node struct {
	graph *Graph
	id    int
	kind  NodeKind

	// name is the variable name for variable nodes, and the operator type
	// name ("conv2d", "feed", ...) for operator nodes.
	name string

	// vtype is only set for variable nodes, and may be nil even then.
	vtype *VarType

	ins, outs []*Node
}

// IsOp returns whether this is an operator node.
func (n *Node) IsOp() bool { return n.kind == KindOperator }

// IsVar returns whether this is a variable node.
func (n *Node) IsVar() bool { return n.kind == KindVariable }

// Kind of the node.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the variable name for variable nodes and the operator type
// name for operator nodes.
func (n *Node) Name() string { return n.name }

// Type returns the operator type name. It panics if called on a variable
// node.
func (n *Node) Type() string {
	if !n.IsOp() {
		exceptions.Panicf("ir.Node.Type() called on variable node %q", n.name)
	}
	return n.name
}

// VarType returns the type descriptor of a variable node, or nil if the
// variable is typeless or the node is an operator.
func (n *Node) VarType() *VarType {
	if !n.IsVar() {
		return nil
	}
	return n.vtype
}

// Inputs returns the incoming incidence list: input variables for an
// operator node, producing operators for a variable node.
//
// The returned slice is owned by the graph and must not be modified.
func (n *Node) Inputs() []*Node { return n.ins }

// Outputs returns the outgoing incidence list: output variables for an
// operator node, consuming operators for a variable node.
//
// The returned slice is owned by the graph and must not be modified.
func (n *Node) Outputs() []*Node { return n.outs }

// Id returns the node's insertion order within the graph. Ids are unique
// across operators and variables.
func (n *Node) Id() int { return n.id }

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.IsOp() {
		return fmt.Sprintf("Op#%d[%s]", n.id, n.name)
	}
	return fmt.Sprintf("Var#%d[%s]=%s", n.id, n.name, n.vtype)
}

// Graph holds an operator graph: a program snapshot over which analysis
// passes run. It is mutable while being built and must be treated as frozen
// (read-only) once handed to a pass -- passes never mutate it, and no
// locking is done.
type Graph struct {
	name string

	nodes []*Node          // All nodes, insertion order.
	ops   []*Node          // Operator nodes only, insertion order.
	vars  map[string]*Node // Variable nodes by name.
}

// New creates an empty Graph with the given name (used for error messages
// and logging only).
func New(name string) *Graph {
	return &Graph{
		name: name,
		vars: make(map[string]*Node),
	}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// Nodes returns all nodes, variables and operators, in insertion order.
//
// The returned slice is owned by the graph and must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NumOps returns the number of operator nodes.
func (g *Graph) NumOps() int { return len(g.ops) }

// Variable returns the variable node with the given name, or nil if it was
// never declared or referenced.
func (g *Graph) Variable(name string) *Node { return g.vars[name] }

// AddVariable declares a variable with an optional type descriptor (vtype
// may be nil for typeless variables). Declaring is optional: AddOp creates
// typeless variables on first reference. It panics if the variable was
// already declared with a different (non-nil) type.
//
// The graph takes ownership of vtype; don't modify it afterwards.
func (g *Graph) AddVariable(name string, vtype *VarType) *Node {
	if name == "" {
		exceptions.Panicf("graph %q: variable name cannot be empty", g.name)
	}
	if node, found := g.vars[name]; found {
		if node.vtype != nil && vtype != nil && node.vtype != vtype {
			exceptions.Panicf("graph %q: variable %q declared twice with different types (%s vs %s)",
				g.name, name, node.vtype, vtype)
		}
		if vtype != nil {
			node.vtype = vtype
		}
		return node
	}
	node := &Node{
		graph: g,
		id:    len(g.nodes),
		kind:  KindVariable,
		name:  name,
		vtype: vtype,
	}
	g.nodes = append(g.nodes, node)
	g.vars[name] = node
	return node
}

// AddOp appends an operator node of the given type reading the variables
// named in inputs and writing those named in outputs, creating typeless
// variable nodes for names not yet declared. Order of inputs and outputs is
// preserved.
func (g *Graph) AddOp(opType string, inputs, outputs []string) *Node {
	if opType == "" {
		exceptions.Panicf("graph %q: operator type cannot be empty", g.name)
	}
	op := &Node{
		graph: g,
		id:    len(g.nodes),
		kind:  KindOperator,
		name:  opType,
	}
	g.nodes = append(g.nodes, op)
	g.ops = append(g.ops, op)
	for _, name := range inputs {
		v := g.AddVariable(name, nil)
		op.ins = append(op.ins, v)
		v.outs = append(v.outs, op)
	}
	for _, name := range outputs {
		v := g.AddVariable(name, nil)
		op.outs = append(op.outs, v)
		v.ins = append(v.ins, op)
	}
	return op
}
