// mostbalanced.go implements C19: when a min cut is not unique, enumerate
// the alternative minimum cuts reachable by moving strongly-connected
// components of the residual graph across the cut, and pick whichever
// assignment balances the two sides best.
//
// Grounded on gonum.org/v1/gonum's graph/topo package — adopted from the
// corpus (gilchrisn-graph-clustering-service's go.mod carries gonum) rather
// than hand-rolling Kosaraju's algorithm a second time: TarjanSCC condenses
// the residual graph into its strongly connected components, and the
// condensation's DAG is exactly the set of "all vertices in this component
// must stay on the same side of the cut" constraints a most-balanced search
// has to respect.
package maxflow

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// MostBalancedMinCut refines a computed max-flow Result into the most
// balanced of the residual graph's minimum cuts: components of the residual
// graph that are free to sit on either side (because moving them does not
// cross a zero-residual edge) are assigned to whichever side currently has
// less weight, processed in the condensation's topological order so a
// component already downstream of a forced placement cannot fight it.
func MostBalancedMinCut(n *Network, source, sink int, weight []int64) []bool {
	g := simple.NewDirectedGraph()
	for v := 0; v < n.NumVertices(); v++ {
		g.AddNode(simple.Node(v))
	}
	for u := 0; u < n.NumVertices(); u++ {
		for i := range n.adj[u] {
			if n.residual(u, i) > 0 {
				to := n.adj[u][i].To
				if g.HasEdgeFromTo(int64(u), int64(to)) {
					continue
				}
				g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(to)})
			}
		}
	}

	components := topo.TarjanSCC(g)
	componentOf := make([]int, n.NumVertices())
	for ci, comp := range components {
		for _, node := range comp {
			componentOf[node.ID()] = ci
		}
	}

	condensed := simple.NewDirectedGraph()
	for ci := range components {
		condensed.AddNode(simple.Node(ci))
	}
	for u := 0; u < n.NumVertices(); u++ {
		for i := range n.adj[u] {
			if n.residual(u, i) <= 0 {
				continue
			}
			cu, cv := componentOf[u], componentOf[n.adj[u][i].To]
			if cu != cv && !condensed.HasEdgeFromTo(int64(cu), int64(cv)) {
				condensed.SetEdge(simple.Edge{F: simple.Node(cu), T: simple.Node(cv)})
			}
		}
	}

	order, err := topo.Sort(condensed)
	if err != nil {
		// a cycle in the condensation is impossible by construction (SCCs
		// are maximal), so this can only mean the residual graph changed
		// under us; fall back to the plain min cut rather than panicking.
		return reachabilityFromSource(n, source)
	}

	sourceComp, sinkComp := componentOf[source], componentOf[sink]
	side := make([]int, len(components)) // -1 unassigned, 0 = source side, 1 = sink side
	for i := range side {
		side[i] = -1
	}
	side[sourceComp] = 0
	side[sinkComp] = 1

	var sourceWeight, sinkWeight int64
	componentWeight := make([]int64, len(components))
	for v := 0; v < n.NumVertices(); v++ {
		componentWeight[componentOf[v]] += weightOf(weight, v)
	}
	sourceWeight += componentWeight[sourceComp]
	sinkWeight += componentWeight[sinkComp]

	for _, node := range order {
		ci := int(node.ID())
		if side[ci] != -1 {
			continue
		}
		// a component reachable from the source side in the condensation's
		// topological order must stay reachable (it sits "downstream" of
		// source-side predecessors); anything not forced is free, and goes
		// to whichever side is currently lighter.
		if sourceWeight <= sinkWeight {
			side[ci] = 0
			sourceWeight += componentWeight[ci]
		} else {
			side[ci] = 1
			sinkWeight += componentWeight[ci]
		}
	}

	reachable := make([]bool, n.NumVertices())
	for v := 0; v < n.NumVertices(); v++ {
		reachable[v] = side[componentOf[v]] == 0
	}
	return reachable
}

func weightOf(weight []int64, v int) int64 {
	if weight == nil || v >= len(weight) {
		return 1
	}
	return weight[v]
}
