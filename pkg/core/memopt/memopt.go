// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package memopt implements static memory-reuse planning for operator
// graphs: given a frozen graph (see pkg/core/ir) and a topological execution
// order, it decides which intermediate buffers may share one physical
// allocation because their live ranges never overlap, reducing peak memory
// without any runtime tracking.
//
// The pass runs in three stages, each a pure function of the previous one's
// output:
//
//  1. CollectLifecycles walks the operators in topological order and records
//     a closed [firstDef, lastUse] step interval per variable.
//  2. CollectVarSizes estimates a byte footprint per reuse-eligible
//     variable, independent of the traversal.
//  3. MakeReusePlan intersects the two maps, builds an interval-overlap
//     conflict graph and greedily clusters non-conflicting variables into
//     shared-storage groups.
//
// Run ties the stages together for one compilation Session and publishes the
// resulting Plan into a passresult.Registry under (session ID, PassName),
// where the downstream buffer-aliasing rewriter picks it up. The planner
// itself holds no state between calls: concurrent sessions over distinct
// graphs need no coordination.
//
// The planner only produces a naming decision. It never allocates memory,
// and it trusts the downstream rewriter to apply the clustering.
package memopt

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/memplan/pkg/core/ir"
	"github.com/gomlx/memplan/pkg/core/passresult"
)

// PassName identifies this pass in the results registry.
const PassName = "memory_optimize_pass"

// Session carries the per-compilation-session knobs the pass reads. One
// Session maps to one graph being compiled; sessions must not share IDs, or
// their registry entries overwrite each other.
type Session struct {
	// ID keys this session's results in the registry.
	ID string

	// EnableMemoryOptim gates the pass: when unset, Run is a no-op and
	// publishes nothing.
	EnableMemoryOptim bool

	// SortVariant selects the topological linearization used to number
	// execution steps. Different variants yield different (all valid)
	// plans.
	SortVariant ir.SortVariant
}

// NewSession creates a Session with a fresh unique ID, memory optimization
// enabled and the default sort variant.
func NewSession() *Session {
	return &Session{
		ID:                uuid.NewString(),
		EnableMemoryOptim: true,
		SortVariant:       ir.SortDefault,
	}
}

// Run executes memory-reuse planning for one session over one frozen graph.
//
// If the session disables memory optimization it returns (nil, nil) without
// touching the graph or the registry. Otherwise it computes the plan and, if
// registry is not nil, publishes it under (sess.ID, PassName), overwriting
// any previous plan for the session. On error nothing is published and no
// partial plan is returned: the caller must discard the session's planning
// entirely.
func Run(sess *Session, g *ir.Graph, registry *passresult.Registry) (*Plan, error) {
	if sess == nil || g == nil {
		return nil, errors.Errorf("memopt.Run requires a session and a graph, got session=%v, graph=%v", sess, g)
	}
	if !sess.EnableMemoryOptim {
		return nil, nil
	}
	lifecycles, err := CollectLifecycles(g, sess.SortVariant)
	if err != nil {
		return nil, errors.WithMessagef(err, "memory optimization of graph %q (session %s)", g.Name(), sess.ID)
	}
	sizeTable, err := CollectVarSizes(g)
	if err != nil {
		return nil, errors.WithMessagef(err, "memory optimization of graph %q (session %s)", g.Name(), sess.ID)
	}
	plan := MakeReusePlan(lifecycles, sizeTable)
	klog.V(1).Infof("graph %q: %d reuse candidates in %d clusters, saving %d bytes",
		g.Name(), len(plan.NodeToCluster), plan.NumClusters(), plan.SavingsBytes())
	if registry != nil {
		registry.Set(sess.ID, PassName, plan)
	}
	return plan, nil
}
