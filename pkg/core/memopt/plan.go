// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package memopt

import (
	"cmp"
	"math"
	"slices"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/gomlx/memplan/pkg/support/sets"
)

// Plan is the result of memory-reuse planning: a clustering of buffers whose
// lifetimes never overlap, so each cluster can share one physical
// allocation. It is consumed by a downstream rewriting stage that renames
// every buffer to its cluster representative.
type Plan struct {
	// NodeToCluster maps every candidate variable to its cluster
	// representative. Representatives map to themselves.
	NodeToCluster map[string]string

	// ClusterSize maps each cluster representative to its own byte size,
	// which is the largest in the cluster by construction.
	ClusterSize map[string]uintptr

	// memberBytes is the sum of the sizes of all candidates, as if none
	// shared storage.
	memberBytes uintptr
}

// NumClusters returns the number of shared-storage clusters.
func (p *Plan) NumClusters() int { return len(p.ClusterSize) }

// ClusterBytes returns the total bytes needed when every cluster is backed
// by one allocation sized for its largest member.
func (p *Plan) ClusterBytes() uintptr {
	var total uintptr
	for _, size := range p.ClusterSize {
		total += size
	}
	return total
}

// SavingsBytes returns how many bytes the plan saves over giving every
// candidate its own allocation.
func (p *Plan) SavingsBytes() uintptr {
	return p.memberBytes - p.ClusterBytes()
}

// memNode is the working record for one reuse candidate.
type memNode struct {
	name     string
	size     uintptr
	lifetime Interval
	adj      sets.Set[string] // Names of candidates whose lifetimes overlap.
	cluster  int              // Assigned cluster index, -1 while unassigned.
}

// MakeReusePlan clusters the variables present in both maps -- those with a
// known lifetime and a known size -- so that no two variables with
// overlapping lifetimes land in the same cluster. Variables with an
// unbounded lifetime (outputs of "feed" operators) are never candidates:
// their buffers belong to the caller.
//
// The clustering is greedy: candidates are visited from largest to smallest
// (ties broken by name, so the plan is deterministic), each unassigned
// candidate opens a cluster, and later unassigned candidates join it when
// they don't conflict with the conflicts accumulated by the members admitted
// so far. That accumulated-adjacency rule admits fewer members than a
// minimal interval-graph coloring would; downstream consumers rely on this
// conservative behavior, so it must not be replaced by an optimal sweep.
func MakeReusePlan(lifecycles map[string]Interval, sizeTable map[string]uintptr) *Plan {
	candidates := make([]*memNode, 0, len(lifecycles))
	for name, lifetime := range lifecycles {
		if lifetime.End == math.MaxInt {
			// Externally fed buffer, must keep its own storage and name.
			continue
		}
		size, found := sizeTable[name]
		if !found {
			continue
		}
		candidates = append(candidates, &memNode{
			name:     name,
			size:     size,
			lifetime: lifetime,
			adj:      sets.Make[string](),
			cluster:  -1,
		})
	}
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].lifetime.Overlaps(candidates[j].lifetime) {
				candidates[i].adj.Insert(candidates[j].name)
				candidates[j].adj.Insert(candidates[i].name)
			}
		}
	}
	slices.SortFunc(candidates, func(a, b *memNode) int {
		if c := cmp.Compare(b.size, a.size); c != 0 { // Largest first.
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	plan := &Plan{
		NodeToCluster: make(map[string]string, len(candidates)),
		ClusterSize:   make(map[string]uintptr),
	}
	for i, root := range candidates {
		plan.memberBytes += root.size
		if root.cluster >= 0 {
			continue
		}
		clusterIndex := len(plan.ClusterSize)
		root.cluster = clusterIndex
		plan.NodeToCluster[root.name] = root.name
		plan.ClusterSize[root.name] = root.size
		clusterAdj := root.adj.Clone()
		for _, other := range candidates[i+1:] {
			if other.cluster >= 0 || clusterAdj.Has(other.name) {
				continue
			}
			other.cluster = clusterIndex
			plan.NodeToCluster[other.name] = root.name
			clusterAdj.Union(other.adj)
		}
	}

	if klog.V(1).Enabled() {
		for name, size := range plan.ClusterSize {
			klog.Infof("memory reuse cluster %q: %s", name, humanize.Bytes(uint64(size)))
		}
	}
	return plan
}
