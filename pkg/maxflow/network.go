// Package maxflow implements C8: a flow-network representation shared by
// every max-flow engine, plus min-cut extraction from the residual graph.
//
// The adjacency-list-of-edges-with-a-paired-reverse-index representation and
// the BFS-level-graph idea are grounded on pkg/partitioner/dinic.go's
// PartitionGraph/MaxFlowEdge pair, generalised from Dinic's specific
// blocking-flow algorithm into a plain mutable network that any engine
// (EdmondKarp, GoldbergTarjan push-relabel, ...) can run against.
package maxflow

const invalidLevel = -1

// Edge is one directed arc in the flow network, paired with its reverse arc
// (index Rev) the way dinic.go pairs MaxFlowEdge with GetReversedEdgeOfVertex.
type Edge struct {
	To       int
	Capacity int64
	Flow     int64
	Rev      int // index, within Network.adj[To], of the paired reverse edge
}

// Network is a mutable directed graph with integer capacities, built once
// per flow-refinement region and discarded after one max-flow computation.
type Network struct {
	adj [][]Edge
}

func NewNetwork(numVertices int) *Network {
	return &Network{adj: make([][]Edge, numVertices)}
}

func (n *Network) NumVertices() int { return len(n.adj) }

// AddEdge inserts a forward arc of the given capacity and its zero-capacity
// reverse arc, returning the forward arc's (from, index) handle.
func (n *Network) AddEdge(from, to int, capacity int64) (int, int) {
	fwdIdx := len(n.adj[from])
	n.adj[from] = append(n.adj[from], Edge{To: to, Capacity: capacity, Rev: len(n.adj[to])})
	n.adj[to] = append(n.adj[to], Edge{To: from, Capacity: 0, Rev: fwdIdx})
	return from, fwdIdx
}

func (n *Network) Edges(v int) []Edge { return n.adj[v] }

func (n *Network) edge(v, i int) *Edge { return &n.adj[v][i] }

func (n *Network) residual(v, i int) int64 {
	e := &n.adj[v][i]
	return e.Capacity - e.Flow
}

func (n *Network) push(v, i int, amount int64) {
	e := &n.adj[v][i]
	e.Flow += amount
	rev := &n.adj[e.To][e.Rev]
	rev.Flow -= amount
}

// Result carries a computed max-flow value plus the residual-graph
// source-side reachability needed for min-cut extraction — this is the
// direct analogue of dinic.go's MinCut, generalised to any engine.
type Result struct {
	MaxFlow int64
	// ReachableFromSource[v] is true iff v is reachable from source via
	// positive-residual edges in the final residual graph — the "partition
	// one" side of the min cut, matching MinCut.GetFlag's convention.
	ReachableFromSource []bool
}

// Engine is the shared contract every max-flow algorithm implements (C8):
// EdmondKarp and GoldbergTarjan are fully implemented; BoykovKolmogorov and
// IBFS are contract-only stubs per spec.md's explicit scoping decision to
// leave specialised image-segmentation-style engines to a future
// contributor rather than hand-rolling untested implementations of them.
type Engine interface {
	MaxFlow(n *Network, source, sink int) Result
}

// CutEdges returns every original forward edge crossing from the
// source-reachable side to the sink-reachable side of the residual graph —
// the min cut itself, read directly off Result.ReachableFromSource.
func CutEdges(n *Network, res Result) [][2]int {
	var cut [][2]int
	for v, reachable := range res.ReachableFromSource {
		if !reachable {
			continue
		}
		for _, e := range n.adj[v] {
			if e.Capacity > 0 && !res.ReachableFromSource[e.To] {
				cut = append(cut, [2]int{v, e.To})
			}
		}
	}
	return cut
}

func reachabilityFromSource(n *Network, source int) []bool {
	reachable := make([]bool, n.NumVertices())
	reachable[source] = true
	queue := []int{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for i := range n.adj[u] {
			e := &n.adj[u][i]
			if n.residual(u, i) > 0 && !reachable[e.To] {
				reachable[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return reachable
}
