// Package coarsening implements C4: rating-driven repeated contraction that
// shrinks a hypergraph level by level until the contraction limit is
// reached, recording a ContractionRecord stack the uncoarsener replays in
// reverse.
//
// The rating/acceptance/penalty split follows spec.md §4.2 directly: a
// rating function scores a candidate pair, an acceptance policy breaks ties
// among equally-rated candidates, and a heavy-node penalty discourages
// contractions that would blow past the per-vertex weight cap.
package coarsening

import (
	"sort"

	"hypart/internal/hprandom"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

// Hierarchy is the stack of contraction records produced by Coarsen, in
// contraction order; Uncoarsen (owned by the multilevel driver) replays it
// back-to-front.
type Hierarchy struct {
	Records []*hypergraph.ContractionRecord
}

type Coarsener struct {
	ctx *context.CoarseningContext
	rng *hprandom.Random
}

func New(ctx *context.CoarseningContext, rng *hprandom.Random) *Coarsener {
	return &Coarsener{ctx: ctx, rng: rng}
}

// Coarsen contracts h in place until |activeVertices| <= contractionLimit,
// where contractionLimit = ContractionLimitMultiplier * k (spec.md §4.2's
// stopping rule), or until no legal contraction remains. community, when
// non-nil, restricts contraction to same-community pairs (C4's
// CommunityAssignment supplement); it is nil for single-level uncommunitied
// runs.
func (c *Coarsener) Coarsen(h *hypergraph.Hypergraph, k int, community []int32) *Hierarchy {
	limit := int(c.ctx.ContractionLimitMultiplier * float64(k))
	maxVertexWeight := c.maxVertexWeight(h, k, limit)

	hier := &Hierarchy{}
	active := c.activeVertexList(h)

	for len(active) > limit {
		pair, ok := c.bestContraction(h, active, maxVertexWeight, community)
		if !ok {
			break // no legal contraction remains; coarsening stalls early.
		}
		rec, err := h.Contract(pair.u, pair.v)
		if err != nil {
			break
		}
		hier.Records = append(hier.Records, rec)
		active = removeInactive(active, h)
	}
	return hier
}

// maxVertexWeight is spec.md §4.2's per-vertex cap s·c(V)/(t·k), t being
// ContractionLimitMultiplier and s being MaxAllowedWeightMultiplier.
func (c *Coarsener) maxVertexWeight(h *hypergraph.Hypergraph, k, limit int) int64 {
	total := h.TotalWeight()
	if limit == 0 {
		return total
	}
	bound := c.ctx.MaxAllowedWeightMultiplier * float64(total) / float64(limit)
	if bound < 1 {
		bound = 1
	}
	return int64(bound)
}

type candidatePair struct {
	u, v   int32
	rating float64
}

// bestContraction scores every legal (u,v) incidence-adjacent pair and
// returns the winner under the configured rating function, breaking ties
// with the acceptance policy. O(Σ_v degree(v)^2) in the worst case, matching
// the teacher's own "rate neighbours via shared incident edges" style.
func (c *Coarsener) bestContraction(h *hypergraph.Hypergraph, active []int32, maxVertexWeight int64, community []int32) (candidatePair, bool) {
	var candidates []candidatePair
	seen := make(map[[2]int32]bool)

	for _, u := range active {
		for _, e := range h.IncidentEdges(u) {
			if h.IsDisabled(e) {
				continue
			}
			for _, v := range h.Pins(e) {
				if v == u || !h.IsActive(v) {
					continue
				}
				if community != nil && community[u] != community[v] {
					continue
				}
				if !c.legalPair(h, u, v, maxVertexWeight) {
					continue
				}
				key := orderedPair(u, v)
				if seen[key] {
					continue
				}
				seen[key] = true
				candidates = append(candidates, candidatePair{u: key[0], v: key[1], rating: c.rate(h, key[0], key[1])})
			}
		}
	}
	if len(candidates) == 0 {
		return candidatePair{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].rating > candidates[j].rating })
	top := candidates[0].rating
	var tied []candidatePair
	for _, cand := range candidates {
		if cand.rating < top {
			break
		}
		tied = append(tied, cand)
	}

	switch c.ctx.AcceptancePolicy {
	case "prefer_unmatched":
		// prefer the pair with the smallest sum of endpoint degrees,
		// nudging coarsening toward vertices that would otherwise stay
		// singleton; random tie-break among equals.
		sort.SliceStable(tied, func(i, j int) bool {
			return degreeSum(h, tied[i]) < degreeSum(h, tied[j])
		})
		best := degreeSum(h, tied[0])
		var finalists []candidatePair
		for _, cand := range tied {
			if degreeSum(h, cand) == best {
				finalists = append(finalists, cand)
			}
		}
		return finalists[c.rng.Intn(len(finalists))], true
	default: // "random"
		return tied[c.rng.Intn(len(tied))], true
	}
}

func degreeSum(h *hypergraph.Hypergraph, p candidatePair) int {
	return len(h.IncidentEdges(p.u)) + len(h.IncidentEdges(p.v))
}

// rate implements the heavy_edge / edge_frequency rating functions from
// spec.md §4.2, scaled down by the heavy-node penalty.
func (c *Coarsener) rate(h *hypergraph.Hypergraph, u, v int32) float64 {
	var score float64
	switch c.ctx.RatingFunction {
	case "edge_frequency":
		for _, e := range h.IncidentEdges(u) {
			if h.IsDisabled(e) || !contains(h.Pins(e), v) {
				continue
			}
			score += float64(h.EdgeWeight(e)) / float64(len(h.Pins(e)))
		}
	default: // "heavy_edge"
		for _, e := range h.IncidentEdges(u) {
			if h.IsDisabled(e) || !contains(h.Pins(e), v) {
				continue
			}
			score += float64(h.EdgeWeight(e)) / float64(len(h.Pins(e))-1)
		}
	}

	if c.ctx.HeavyNodePenalty == "multiplicative" {
		combined := float64(h.Weight(u) + h.Weight(v))
		score /= combined
	}
	return score
}

func (c *Coarsener) legalPair(h *hypergraph.Hypergraph, u, v int32, maxVertexWeight int64) bool {
	if !c.fixedPairAllowed(h, u, v) {
		return false
	}
	if h.Part(u) != hypergraph.Unassigned && h.Part(v) != hypergraph.Unassigned && h.Part(u) != h.Part(v) {
		return false
	}
	if h.Weight(u)+h.Weight(v) > maxVertexWeight {
		return false
	}
	return true
}

// fixedPairAllowed applies Context.Coarsening.FixedVertexAcceptance: whether
// a pair where one or both endpoints is fixed may still be contracted.
// "free_vertex_only" rejects any fixed endpoint outright, matching spec.md's
// conservative default. "fixed_vertex_allowed" lets a free vertex be
// absorbed by a fixed one (Contract folds the free side's weight under the
// fixed block once the merge happens) but still refuses to merge two
// independently-fixed vertices, even ones that happen to target the same
// block. "equivalent_vertices" relaxes that last case too — two fixed
// vertices already pinned to the same block are "equivalent" and merging
// them loses no information the partitioner didn't already have; the
// part-equality check right after this call is what actually enforces
// "same block", Contract itself refuses the disagreeing case outright.
func (c *Coarsener) fixedPairAllowed(h *hypergraph.Hypergraph, u, v int32) bool {
	uFixed, vFixed := h.IsFixed(u), h.IsFixed(v)
	switch c.ctx.FixedVertexAcceptance {
	case "equivalent_vertices":
		return !(uFixed && vFixed) || h.Part(u) == h.Part(v)
	case "fixed_vertex_allowed":
		return !(uFixed && vFixed)
	default: // "free_vertex_only"
		return !uFixed && !vFixed
	}
}

func (c *Coarsener) activeVertexList(h *hypergraph.Hypergraph) []int32 {
	out := make([]int32, 0, h.NumVertices())
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		if h.IsActive(v) {
			out = append(out, v)
		}
	}
	return out
}

func removeInactive(active []int32, h *hypergraph.Hypergraph) []int32 {
	out := active[:0]
	for _, v := range active {
		if h.IsActive(v) {
			out = append(out, v)
		}
	}
	return out
}

func orderedPair(a, b int32) [2]int32 {
	if a < b {
		return [2]int32{a, b}
	}
	return [2]int32{b, a}
}

func contains(s []int32, x int32) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}

// CommunityAssignment is the C4 [SUPPLEMENT]: a per-vertex community label
// restricting coarsening to same-community pairs, computed upstream (e.g.
// via a louvain-style detector) and threaded through Coarsen's community
// parameter. Kept as a named type so callers don't pass a bare []int32
// without documentation of its role.
type CommunityAssignment []int32
