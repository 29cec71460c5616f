// Package hypergraph implements the mutable incidence representation (C1):
// vertices and hyperedges with weights, a total-or-partial partition π, and
// the per-hyperedge/per-block aggregates (pinCountInPart, connectivity,
// block weight) kept incrementally across contraction, uncontraction and
// node moves.
//
// The pin list of a hyperedge is stored as a plain slice rather than the
// fixed compressed-sparse-row arrays a read-only incidence matrix would use,
// because contract/uncontract must shrink and grow individual pin lists in
// place; the CSR convention's three-array split (values/column-index/row-
// pointer) survives only in spirit, as the separation between a hyperedge's
// own pin slice and the vertex's own incident-edge slice.
package hypergraph

import "hypart/internal/hperrors"

const Unassigned int32 = -1

type Vertex struct {
	weight    int64
	community int32
	fixed     bool
	active    bool // false once contracted away
}

type Hyperedge struct {
	weight   int64
	pins     []int32
	disabled bool
}

type Hypergraph struct {
	k int

	vertices []Vertex
	part     []int32 // π(v), Unassigned until SetNodePart

	edges         []Hyperedge
	incidentEdges [][]int32 // per vertex, the hyperedge ids it currently touches

	pinCountInPart [][]int32 // [edge][block]
	connectivity   []int32   // per edge, count of nonzero pinCountInPart entries

	blockWeight []int64 // per block
}

// New builds a hypergraph with numVertices vertices (all unassigned, weight
// 1, community -1) and no hyperedges yet; AddHyperedge populates it. k is
// the fixed number of blocks for the lifetime of this hypergraph (coarsening
// never changes k, only |V|).
func New(numVertices, k int) *Hypergraph {
	h := &Hypergraph{
		k:             k,
		vertices:      make([]Vertex, numVertices),
		part:          make([]int32, numVertices),
		incidentEdges: make([][]int32, numVertices),
		blockWeight:   make([]int64, k),
	}
	for i := range h.vertices {
		h.vertices[i] = Vertex{weight: 1, community: -1, active: true}
		h.part[i] = Unassigned
	}
	return h
}

func (h *Hypergraph) NumVertices() int { return len(h.vertices) }
func (h *Hypergraph) NumEdges() int    { return len(h.edges) }
func (h *Hypergraph) K() int           { return h.k }

// AddHyperedge appends a new hyperedge with the given weight and pin set,
// initialising pinCountInPart for any pin that is already assigned (used
// when the hypergraph is first read from a file; once partitioning starts,
// SetNodePart/ChangeNodePart are the mutation paths).
func (h *Hypergraph) AddHyperedge(weight int64, pins []int32) int32 {
	id := int32(len(h.edges))
	pinsCopy := append([]int32(nil), pins...)
	h.edges = append(h.edges, Hyperedge{weight: weight, pins: pinsCopy, disabled: len(pinsCopy) <= 1})
	h.pinCountInPart = append(h.pinCountInPart, make([]int32, h.k))
	h.connectivity = append(h.connectivity, 0)
	for _, v := range pinsCopy {
		h.incidentEdges[v] = append(h.incidentEdges[v], id)
		if b := h.part[v]; b != Unassigned {
			h.pinCountInPart[id][b]++
		}
	}
	h.recomputeConnectivity(id)
	return id
}

func (h *Hypergraph) SetVertexWeight(v int32, w int64) { h.vertices[v].weight = w }
func (h *Hypergraph) SetCommunity(v int32, c int32)    { h.vertices[v].community = c }
func (h *Hypergraph) SetFixed(v int32, fixed bool)     { h.vertices[v].fixed = fixed }

func (h *Hypergraph) Weight(v int32) int64      { return h.vertices[v].weight }
func (h *Hypergraph) Community(v int32) int32   { return h.vertices[v].community }
func (h *Hypergraph) IsFixed(v int32) bool      { return h.vertices[v].fixed }
func (h *Hypergraph) IsActive(v int32) bool     { return h.vertices[v].active }
func (h *Hypergraph) Part(v int32) int32        { return h.part[v] }
func (h *Hypergraph) BlockWeight(i int32) int64 { return h.blockWeight[i] }

func (h *Hypergraph) EdgeWeight(e int32) int64        { return h.edges[e].weight }
func (h *Hypergraph) Pins(e int32) []int32            { return h.edges[e].pins }
func (h *Hypergraph) IsDisabled(e int32) bool         { return h.edges[e].disabled }
func (h *Hypergraph) Connectivity(e int32) int32      { return h.connectivity[e] }
func (h *Hypergraph) PinCountInPart(e, i int32) int32 { return h.pinCountInPart[e][i] }
func (h *Hypergraph) IncidentEdges(v int32) []int32   { return h.incidentEdges[v] }

// BorderNode reports whether v touches at least one hyperedge spanning two
// or more blocks. It is computed directly from the connectivity array on
// every call rather than cached, so it can never drift from pinCountInPart
// — the O(|incidentEdges(v)|) cost matches the bound §4.1 gives for the
// mutations that would otherwise have to keep a cached flag in sync.
func (h *Hypergraph) BorderNode(v int32) bool {
	for _, e := range h.incidentEdges[v] {
		if h.connectivity[e] >= 2 {
			return true
		}
	}
	return false
}

// SetNodePart assigns v's initial block (π(v) was Unassigned). Used by the
// initial partitioner; once every vertex has a block, refiners use
// ChangeNodePart instead.
func (h *Hypergraph) SetNodePart(v, block int32) {
	h.part[v] = block
	h.blockWeight[block] += h.vertices[v].weight
	for _, e := range h.incidentEdges[v] {
		h.pinCountInPart[e][block]++
		h.recomputeConnectivity(e)
	}
}

// ChangeNodePart moves v from `from` to `to`, updating pinCountInPart,
// connectivity and block weights for every e∋v. O(|incidentEdges(v)|).
func (h *Hypergraph) ChangeNodePart(v, from, to int32) error {
	if h.part[v] != from {
		return hperrors.NewInvariantViolation("changeNodePart(%d): expected from=%d, actual π(v)=%d", v, from, h.part[v])
	}
	h.part[v] = to
	h.blockWeight[from] -= h.vertices[v].weight
	h.blockWeight[to] += h.vertices[v].weight
	for _, e := range h.incidentEdges[v] {
		h.pinCountInPart[e][from]--
		h.pinCountInPart[e][to]++
		h.recomputeConnectivity(e)
	}
	return nil
}

// recomputeConnectivity recalculates λ(e) from pinCountInPart. It never
// touches the disabled flag — that is set explicitly at each call site that
// changes a pin list's length (AddHyperedge, Contract, Uncontract), since
// "single-pin" and "λ < 2" are related but distinct conditions during the
// brief window where a contraction has just shrunk a pin list.
func (h *Hypergraph) recomputeConnectivity(e int32) {
	var lambda int32
	for _, count := range h.pinCountInPart[e] {
		if count > 0 {
			lambda++
		}
	}
	h.connectivity[e] = lambda
}

// TotalWeight sums w(v) over all active vertices (Σc(V)).
func (h *Hypergraph) TotalWeight() int64 {
	var total int64
	for i := range h.vertices {
		if h.vertices[i].active {
			total += h.vertices[i].weight
		}
	}
	return total
}

// CutWeight is Σ_{e: λ(e)≥2} ω(e), the cut objective.
func (h *Hypergraph) CutWeight() int64 {
	var total int64
	for e := range h.edges {
		if !h.edges[e].disabled && h.connectivity[e] >= 2 {
			total += h.edges[e].weight
		}
	}
	return total
}

// Km1Weight is Σ_e ω(e)·(λ(e)−1), the connectivity-minus-one objective.
func (h *Hypergraph) Km1Weight() int64 {
	var total int64
	for e := range h.edges {
		if h.edges[e].disabled {
			continue
		}
		lambda := int64(h.connectivity[e])
		if lambda > 1 {
			total += h.edges[e].weight * (lambda - 1)
		}
	}
	return total
}
