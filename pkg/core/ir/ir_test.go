// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	. "github.com/gomlx/memplan/pkg/core/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphBuilding(t *testing.T) {
	g := New("test")
	g.AddVariable("x", &VarType{Dimensions: []int{-1, 8}, DType: dtypes.Float32})
	g.AddOp("feed", nil, []string{"x"})
	matmul := g.AddOp("matmul", []string{"x", "w"}, []string{"y"})
	g.AddOp("fetch", []string{"y"}, nil)

	require.Equal(t, 3, g.NumOps())

	x := g.Variable("x")
	require.NotNil(t, x)
	assert.True(t, x.IsVar())
	assert.False(t, x.IsOp())
	assert.Equal(t, "x", x.Name())
	require.NotNil(t, x.VarType())
	assert.Equal(t, dtypes.Float32, x.VarType().DType)
	assert.Equal(t, []int{-1, 8}, x.VarType().Dimensions)

	// "w" was created on first reference, typeless.
	w := g.Variable("w")
	require.NotNil(t, w)
	assert.Nil(t, w.VarType())

	// Incidence lists: matmul reads x and w, writes y; y is consumed by fetch.
	assert.True(t, matmul.IsOp())
	assert.Equal(t, "matmul", matmul.Type())
	require.Len(t, matmul.Inputs(), 2)
	assert.Equal(t, "x", matmul.Inputs()[0].Name())
	assert.Equal(t, "w", matmul.Inputs()[1].Name())
	require.Len(t, matmul.Outputs(), 1)
	y := matmul.Outputs()[0]
	assert.Equal(t, "y", y.Name())
	require.Len(t, y.Inputs(), 1)
	assert.Same(t, matmul, y.Inputs()[0])
	require.Len(t, y.Outputs(), 1)
	assert.Equal(t, "fetch", y.Outputs()[0].Type())

	// Variable nodes cannot answer Type().
	assert.NotNil(t, exceptions.Try(func() { _ = x.Type() }))

	// Unknown variables are nil.
	assert.Nil(t, g.Variable("nope"))
}

func TestGraphBuildingErrors(t *testing.T) {
	g := New("test")
	assert.NotNil(t, exceptions.Try(func() { g.AddVariable("", nil) }))
	assert.NotNil(t, exceptions.Try(func() { g.AddOp("", nil, nil) }))

	// Re-declaring with a different type panics; with the same or nil type
	// it is a no-op.
	vt := &VarType{Dimensions: []int{2}, DType: dtypes.Int32}
	g.AddVariable("v", vt)
	g.AddVariable("v", nil)
	g.AddVariable("v", vt)
	other := &VarType{Dimensions: []int{3}, DType: dtypes.Int32}
	assert.NotNil(t, exceptions.Try(func() { g.AddVariable("v", other) }))
}

func TestVarTypeString(t *testing.T) {
	var vt *VarType
	assert.Equal(t, "(untyped)", vt.String())
	vt = &VarType{Dimensions: []int{-1, 3}, DType: dtypes.Float32, Persistent: true}
	assert.Contains(t, vt.String(), "persistent")
	vt = &VarType{DType: dtypes.Int64, Kind: Opaque}
	assert.Contains(t, vt.String(), "opaque")
}
