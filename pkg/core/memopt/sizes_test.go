// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package memopt_test

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/memplan/pkg/core/ir"
	"github.com/gomlx/memplan/pkg/core/memopt"
)

func TestCollectVarSizes(t *testing.T) {
	g := ir.New("sizes")
	g.AddVariable("x", denseF32(-1, 3, 4))
	g.AddVariable("w", persistentF32(3, 4))
	g.AddVariable("y", denseF32(-1, 4))
	g.AddVariable("out", denseF32(-1, 4))
	g.AddOp("feed", nil, []string{"x"})
	g.AddOp("conv2d", []string{"x", "w"}, []string{"y"})
	g.AddOp("scale", []string{"y"}, []string{"out"})
	g.AddOp("fetch", []string{"out"}, nil)

	table, err := memopt.CollectVarSizes(g)
	require.NoError(t, err)

	// Dynamic axis counts as 1: 1*3*4 elements of 4 bytes.
	assert.Equal(t, uintptr(48), table["x"])
	assert.Equal(t, uintptr(16), table["y"])
	// Persistent parameters are never sized.
	assert.NotContains(t, table, "w")
	// "out" touches the blacklisted "fetch" sink.
	assert.NotContains(t, table, "out")
	assert.Len(t, table, 2)
}

func TestCollectVarSizesDTypeWidths(t *testing.T) {
	g := ir.New("dtypes")
	g.AddVariable("half", &ir.VarType{Dimensions: []int{10}, DType: dtypes.Float16})
	g.AddVariable("long", &ir.VarType{Dimensions: []int{10}, DType: dtypes.Int64})
	g.AddVariable("bool", &ir.VarType{Dimensions: []int{10}, DType: dtypes.Bool})
	g.AddOp("cast", []string{"half"}, []string{"long", "bool"})

	table, err := memopt.CollectVarSizes(g)
	require.NoError(t, err)
	assert.Equal(t, uintptr(20), table["half"])
	assert.Equal(t, uintptr(80), table["long"])
	assert.Equal(t, uintptr(10), table["bool"])
}

func TestCollectVarSizesBlacklistContagion(t *testing.T) {
	// Any incident blacklisted operator poisons the variable, whether it
	// produces or consumes it, and regardless of other safe ops around it.
	g := ir.New("blacklist")
	g.AddVariable("cond_out", denseF32(8))
	g.AddVariable("loop_in", denseF32(8))
	g.AddVariable("clean", denseF32(8))
	g.AddOp("conditional_block", nil, []string{"cond_out"})
	g.AddOp("relu", []string{"cond_out"}, []string{"clean"})
	g.AddOp("scale", []string{"clean"}, []string{"loop_in"})
	g.AddOp("while", []string{"loop_in"}, nil)

	table, err := memopt.CollectVarSizes(g)
	require.NoError(t, err)
	assert.NotContains(t, table, "cond_out", "produced by blacklisted op")
	assert.NotContains(t, table, "loop_in", "consumed by blacklisted op")
	assert.Contains(t, table, "clean")
}

func TestCollectVarSizesSkipsNonDenseVars(t *testing.T) {
	g := ir.New("containers")
	g.AddVariable("dense", denseF32(2, 2))
	g.AddVariable("rows", &ir.VarType{Dimensions: []int{2, 2}, DType: dtypes.Float32, Kind: ir.Opaque})
	g.AddOp("op", []string{"dense", "rows"}, []string{"untyped"})

	table, err := memopt.CollectVarSizes(g)
	require.NoError(t, err)
	assert.Contains(t, table, "dense")
	assert.NotContains(t, table, "rows")
	assert.NotContains(t, table, "untyped")
}
