package hypergraph

import "hypart/internal/hperrors"

// edgeContractionInfo is the per-hyperedge diff recorded while contracting
// v into u, sufficient to invert the pin-list edit exactly (up to pin
// order, which §3's invariant I3 only requires to be set-equal after
// re-sorting).
type edgeContractionInfo struct {
	edge              int32
	uAlreadyInEdge    bool // v's slot was removed outright rather than renamed
	vPinIndex         int  // v's position in the edge's pin slice before contraction
	wasDisabledBefore bool
}

// ContractionRecord r=(u,v,w_pre(u)) records that v was merged into u. A
// stack of these, owned by the coarsener, is the sole representation of the
// contraction hierarchy; uncontract(r) reads only r itself.
//
// The Fixed* fields exist only for the FixedVertexAcceptance policies that
// let a fixed vertex absorb (or be absorbed by) a free one before initial
// partitioning has run: whichever side was free had never contributed its
// weight to blockWeight, so Contract folds it in under the fixed side's
// block and records exactly what it did, for Uncontract to reverse.
type ContractionRecord struct {
	U, V       int32
	WeightPreU int64

	UBecameFixed        bool  // this call flipped U from free to fixed
	UWeightAddedToBlock bool  // U's pre-merge weight was folded into blockWeight
	VWeightAddedToBlock bool  // V's weight was folded into blockWeight
	FixedBlock          int32 // the block the above were folded into, if either is true

	edges []edgeContractionInfo
}

// Contract merges v into u. Pre: π undefined for either, or π(u)=π(v), and
// if both are fixed they must already agree on that block — the coarsener's
// FixedVertexAcceptance policy decides which (u,v) pairs involving a fixed
// vertex ever reach this call; Contract itself only refuses the one case no
// policy can make sense of, two fixed vertices pinned to different blocks.
// Every hyperedge that contained v now contains u; if a pin list collapses
// to length 1 the edge is marked disabled.
func (h *Hypergraph) Contract(u, v int32) (*ContractionRecord, error) {
	if h.part[u] != Unassigned && h.part[v] != Unassigned && h.part[u] != h.part[v] {
		return nil, hperrors.NewInvariantViolation("contract(%d,%d): parts disagree (%d vs %d)", u, v, h.part[u], h.part[v])
	}
	uFixed, vFixed := h.vertices[u].fixed, h.vertices[v].fixed
	if uFixed && vFixed && h.part[u] != h.part[v] {
		return nil, hperrors.NewInvariantViolation("contract(%d,%d): fixed vertices disagree on block (%d vs %d)", u, v, h.part[u], h.part[v])
	}

	rec := &ContractionRecord{U: u, V: v, WeightPreU: h.vertices[u].weight}

	if uFixed || vFixed {
		block := h.part[u]
		if vFixed && !uFixed {
			block = h.part[v]
		}
		if !uFixed {
			h.blockWeight[block] += h.vertices[u].weight
			rec.UWeightAddedToBlock = true
		}
		if !vFixed {
			h.blockWeight[block] += h.vertices[v].weight
			rec.VWeightAddedToBlock = true
		}
		if !uFixed {
			h.vertices[u].fixed = true
			rec.UBecameFixed = true
		}
		h.part[u] = block
		rec.FixedBlock = block
	}

	incident := h.incidentEdges[v]
	h.incidentEdges[v] = nil

	for _, e := range incident {
		pins := h.edges[e].pins
		vIdx := indexOf(pins, v)
		uAlready := indexOf(pins, u) >= 0
		wasDisabled := h.edges[e].disabled

		if uAlready {
			h.edges[e].pins = removeAt(pins, vIdx)
			if block := h.part[v]; block != Unassigned {
				h.pinCountInPart[e][block]--
			}
			h.edges[e].disabled = len(h.edges[e].pins) <= 1
		} else {
			pins[vIdx] = u
			h.incidentEdges[u] = append(h.incidentEdges[u], e)
			// renaming a pin does not change which blocks are represented,
			// nor the pin count, so disabled cannot change in this branch.
		}
		h.recomputeConnectivity(e)

		rec.edges = append(rec.edges, edgeContractionInfo{
			edge:              e,
			uAlreadyInEdge:    uAlready,
			vPinIndex:         vIdx,
			wasDisabledBefore: wasDisabled,
		})
	}

	h.vertices[u].weight += h.vertices[v].weight
	h.vertices[v].active = false
	return rec, nil
}

// Uncontract inverts rec exactly: v becomes active again, inherits u's
// current block (I3), and every hyperedge touched by the contraction has
// its pin list and disabled flag restored.
func (h *Hypergraph) Uncontract(rec *ContractionRecord) {
	u, v := rec.U, rec.V

	h.vertices[v].active = true
	h.part[v] = h.part[u]
	h.vertices[u].weight = rec.WeightPreU

	if rec.UWeightAddedToBlock {
		h.blockWeight[rec.FixedBlock] -= rec.WeightPreU
	}
	if rec.VWeightAddedToBlock {
		h.blockWeight[rec.FixedBlock] -= h.vertices[v].weight
	}
	if rec.UBecameFixed {
		h.vertices[u].fixed = false
	}

	for i := len(rec.edges) - 1; i >= 0; i-- {
		info := rec.edges[i]
		e := info.edge
		if info.uAlreadyInEdge {
			h.edges[e].pins = insertAt(h.edges[e].pins, info.vPinIndex, v)
			h.incidentEdges[v] = append(h.incidentEdges[v], e)
			if block := h.part[v]; block != Unassigned {
				h.pinCountInPart[e][block]++
			}
		} else {
			h.edges[e].pins[info.vPinIndex] = v
			h.incidentEdges[u] = removeValue(h.incidentEdges[u], e)
			h.incidentEdges[v] = append(h.incidentEdges[v], e)
		}
		h.edges[e].disabled = info.wasDisabledBefore
		h.recomputeConnectivity(e)
	}
}

func indexOf(s []int32, x int32) int {
	for i, v := range s {
		if v == x {
			return i
		}
	}
	return -1
}

func removeAt(s []int32, i int) []int32 {
	return append(s[:i], s[i+1:]...)
}

func insertAt(s []int32, i int, x int32) []int32 {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = x
	return s
}

func removeValue(s []int32, x int32) []int32 {
	for i, v := range s {
		if v == x {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
