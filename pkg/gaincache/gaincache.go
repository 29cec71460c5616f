// Package gaincache implements C3: per-(vertex, target-block) move gains,
// kept incrementally via a delta-update protocol instead of being
// recomputed from scratch after every move.
//
// Spec §3 gives two gain formulas, one per objective. For km1, g(v,t)
// decomposes into a term that depends only on v (and its current block) and
// a term that depends on the target t:
//
//	g(v,t) = selfTerm(v) - penalty(v,t)
//	selfTerm(v)  = Σ_{e∋v} ω(e)·𝟙[pinCountInPart(e,π(v))=1]
//	penalty(v,t) = Σ_{e∋v} ω(e)·𝟙[pinCountInPart(e,t)=0]
//
// For cut, only edges sitting exactly on the λ(e)∈{1,2} boundary change cut
// membership when v moves, so the same selfTerm/penalty split applies with
// an extra λ(e) guard on each term:
//
//	selfTerm(v)  = Σ_{e∋v} ω(e)·𝟙[pinCountInPart(e,π(v))=1 ∧ λ(e)=2]
//	penalty(v,t) = Σ_{e∋v} ω(e)·𝟙[pinCountInPart(e,t)=0 ∧ λ(e)=1]
//
// Both regroup the same way so a move only has to touch the handful of
// neighbours whose pinCountInPart indicator (or, for cut, λ(e) itself)
// flips, rather than recomputing every (v,t) pair from scratch.
package gaincache

import (
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

type GainCache struct {
	h         *hypergraph.Hypergraph
	k         int32
	objective context.Objective
	selfTerm  map[int32]float64
	penalty   map[int32][]float64
}

func New(h *hypergraph.Hypergraph, objective context.Objective) *GainCache {
	return &GainCache{
		h:         h,
		k:         int32(h.K()),
		objective: objective,
		selfTerm:  make(map[int32]float64),
		penalty:   make(map[int32][]float64),
	}
}

func (gc *GainCache) ensure(v int32) []float64 {
	if p, ok := gc.penalty[v]; ok {
		return p
	}
	p := make([]float64, gc.k)
	gc.penalty[v] = p
	return p
}

// InitVertex computes g(v,·) fresh by scanning v's incident edges, for use
// when v first becomes a border node (fresh recomputation, not a delta).
func (gc *GainCache) InitVertex(v int32) {
	p := make([]float64, gc.k)
	var self float64
	pv := gc.h.Part(v)
	cut := gc.objective == context.ObjectiveCut
	for _, e := range gc.h.IncidentEdges(v) {
		w := float64(gc.h.EdgeWeight(e))
		lambda := gc.h.Connectivity(e)
		if gc.h.PinCountInPart(e, pv) == 1 && (!cut || lambda == 2) {
			self += w
		}
		for t := int32(0); t < gc.k; t++ {
			if gc.h.PinCountInPart(e, t) == 0 && (!cut || lambda == 1) {
				p[t] += w
			}
		}
	}
	gc.selfTerm[v] = self
	gc.penalty[v] = p
}

func (gc *GainCache) Forget(v int32) {
	delete(gc.selfTerm, v)
	delete(gc.penalty, v)
}

func (gc *GainCache) Has(v int32) bool {
	_, ok := gc.selfTerm[v]
	return ok
}

// Gain returns g(v,t); v must have been initialised via InitVertex.
func (gc *GainCache) Gain(v, t int32) float64 {
	return gc.selfTerm[v] - gc.penalty[v][t]
}

// BestTarget returns the feasible target (t != π(v), not excluded) with the
// highest gain, for seeding or re-seeding the k-way PQ.
func (gc *GainCache) BestTarget(v int32, excluded func(t int32) bool) (target int32, gain float64, ok bool) {
	pv := gc.h.Part(v)
	best := -1
	var bestGain float64
	for t := int32(0); t < gc.k; t++ {
		if t == pv || (excluded != nil && excluded(t)) {
			continue
		}
		g := gc.Gain(v, t)
		if best == -1 || g > bestGain {
			best = int(t)
			bestGain = g
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return int32(best), bestGain, true
}

// Update applies the pinCountInPart-transition delta cases for a move v:
// from -> to. Must be called with the hypergraph already mutated (i.e.
// after Hypergraph.ChangeNodePart), using the before-move snapshot captured
// by CaptureBeforeCounts: cf = pinCountInPart(e,from) BEFORE the move (per
// edge, same for every edge since the move decrements each by exactly one),
// ct = pinCountInPart(e,to) BEFORE the move, lambdaBefore = λ(e) BEFORE the
// move. The caller removes v's own cache entry and re-initialises/activates
// newly-bordering neighbours separately.
//
// For km1, every transition matters regardless of λ(e)'s value, since km1
// tracks λ(e) itself. For cut, only transitions that cross the λ(e)∈{1,2}
// boundary change the objective, so each case below is additionally guarded
// by the λ(e) value (before or after the move, whichever the case needs) at
// which that boundary crossing happens. For cut, an edge whose λ(e) itself
// changes flips the λ-gated indicator of every term it contributes to the
// other pins, so those pins are recomputed via InitVertex once all of v's
// edges have been visited; the cases below only see edges whose λ(e) is
// unchanged.
func (gc *GainCache) Update(v, from, to int32, edgeCountsBefore map[int32]EdgeCountsBefore) {
	cut := gc.objective == context.ObjectiveCut
	stale := make(map[int32]bool)
	for _, e := range gc.h.IncidentEdges(v) {
		before, ok := edgeCountsBefore[e]
		if !ok {
			continue
		}
		cf, ct, lambdaBefore := before.From, before.To, before.Lambda
		lambdaAfter := lambdaBefore
		if cf == 1 {
			lambdaAfter--
		}
		if ct == 0 {
			lambdaAfter++
		}
		weight := float64(gc.h.EdgeWeight(e))
		pins := gc.h.Pins(e)

		if cut && lambdaAfter != lambdaBefore {
			for _, w := range pins {
				if w != v && gc.Has(w) {
					stale[w] = true
				}
			}
			continue
		}

		switch cf {
		case 2:
			// the one remaining `from`-pin besides v becomes the sole
			// representative: its selfTerm gains ω(e) (for cut, only if the
			// edge now sits exactly on the λ=2 boundary).
			if !cut || lambdaAfter == 2 {
				if w := findOtherPinInBlock(gc.h, pins, v, from); w != -1 && gc.Has(w) {
					gc.selfTerm[w] += weight
				}
			}
		case 1:
			// `from` disappears from e entirely: every other pin loses
			// ω(e) of gain for targeting `from` (for cut, only if the edge
			// is now left with exactly one block, i.e. re-adding a second
			// one would newly cut it).
			if !cut || lambdaAfter == 1 {
				for _, w := range pins {
					if w == v || !gc.Has(w) {
						continue
					}
					gc.ensure(w)[from] += weight
				}
			}
		}

		switch ct {
		case 0:
			// `to` newly appears on e: every other pin gains ω(e) of gain
			// for targeting `to` (no longer adds a new block). For cut,
			// this only reverses a penalty that existed while the edge had
			// exactly one block.
			if !cut || lambdaBefore == 1 {
				for _, w := range pins {
					if w == v || !gc.Has(w) {
						continue
					}
					gc.ensure(w)[to] -= weight
				}
			}
		case 1:
			// the previous sole `to`-pin loses its selfTerm bonus (for cut,
			// only if that bonus was actually being granted, i.e. the edge
			// was sitting on the λ=2 boundary before the move).
			if !cut || lambdaBefore == 2 {
				if w := findOtherPinInBlock(gc.h, pins, v, to); w != -1 && gc.Has(w) {
					gc.selfTerm[w] -= weight
				}
			}
		}
	}
	for w := range stale {
		gc.InitVertex(w)
	}
}

func findOtherPinInBlock(h *hypergraph.Hypergraph, pins []int32, exclude, block int32) int32 {
	for _, w := range pins {
		if w != exclude && h.Part(w) == block {
			return w
		}
	}
	return -1
}

// EdgeCountsBefore snapshots, for one hyperedge incident to a moving vertex,
// the state CaptureBeforeCounts needs to record before the move is applied:
// pinCountInPart(e,from), pinCountInPart(e,to), and λ(e) itself.
type EdgeCountsBefore struct {
	From, To, Lambda int32
}

// CaptureBeforeCounts snapshots, for every edge incident to v, the
// pinCountInPart of `from` and `to` and the edge's connectivity, all
// *before* the move is applied. Call this before Hypergraph.ChangeNodePart,
// then call Update after.
func CaptureBeforeCounts(h *hypergraph.Hypergraph, v, from, to int32) map[int32]EdgeCountsBefore {
	out := make(map[int32]EdgeCountsBefore, len(h.IncidentEdges(v)))
	for _, e := range h.IncidentEdges(v) {
		out[e] = EdgeCountsBefore{
			From:   h.PinCountInPart(e, from),
			To:     h.PinCountInPart(e, to),
			Lambda: h.Connectivity(e),
		}
	}
	return out
}
