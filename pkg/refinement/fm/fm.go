// Package fm implements C6: k-way Fiduccia-Mattheyses local search over a
// gain-cached hypergraph, seeded from the border nodes of the current level
// and rolled back to the best feasible prefix of moves it found.
package fm

import (
	"hypart/internal/hprandom"
	"hypart/pkg/context"
	"hypart/pkg/gaincache"
	"hypart/pkg/hypergraph"
	"hypart/pkg/pqueue"
)

type move struct {
	v        int32
	from, to int32
	gain     float64
}

type Refiner struct {
	ctx *context.RefinementContext
	rng *hprandom.Random
}

func New(ctx *context.RefinementContext, rng *hprandom.Random) *Refiner {
	return &Refiner{ctx: ctx, rng: rng}
}

// Refine runs one FM pass over h: seed the k-way PQ with every border node's
// best move, repeatedly pop the global max-gain feasible move, apply it, and
// update the gain cache and PQ for affected neighbours, stopping per the
// configured stopping rule. It rolls back to the best-seen prefix before
// returning, so the caller always gets a result at least as good as the
// pass's starting point.
func (r *Refiner) Refine(h *hypergraph.Hypergraph, cfg *context.Context) {
	gc := gaincache.New(h, cfg.Objective)
	pq := pqueue.New(h.K(), r.ctx.UseRandomTieBreaking, r.rng)
	queuedPart := make(map[int32]int32) // v -> the part it's currently queued under, if any

	seed := func(v int32) {
		if !h.BorderNode(v) || h.IsFixed(v) {
			return
		}
		gc.InitVertex(v)
		target, gain, ok := gc.BestTarget(v, nil)
		if !ok {
			return
		}
		pq.Insert(v, target, gain)
		queuedPart[v] = target
	}
	requeue := func(v int32) {
		if p, ok := queuedPart[v]; ok {
			pq.Remove(v, p)
			delete(queuedPart, v)
		}
		gc.InitVertex(v)
		if t, g, ok := gc.BestTarget(v, nil); ok {
			pq.Insert(v, t, g)
			queuedPart[v] = t
		}
	}
	unqueue := func(v int32) {
		if p, ok := queuedPart[v]; ok {
			pq.Remove(v, p)
			delete(queuedPart, v)
		}
	}
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		if h.IsActive(v) {
			seed(v)
		}
	}

	var moves []move
	var bestPrefixLen int
	var runningGain, bestGain float64
	var sinceImprovement int

	stop := func() bool {
		if pq.Empty() {
			return true
		}
		switch r.ctx.FMStoppingRule {
		case "adaptive_opt":
			limit := int(r.ctx.FMAdaptiveAlpha * float64(h.NumVertices()))
			if limit < 1 {
				limit = 1
			}
			return sinceImprovement > limit
		default: // "simple": stop once |V| consecutive moves yield no further improvement
			return sinceImprovement >= h.NumVertices()
		}
	}

	for !stop() {
		v, gain, to, ok := pq.DeleteMax()
		if !ok {
			break
		}
		delete(queuedPart, v)
		from := h.Part(v)
		if from == to {
			continue
		}
		if h.BlockWeight(to)+h.Weight(v) > cfg.MaxPartWeight(to, h.TotalWeight()) {
			// infeasible target: try the next-best target for v instead of
			// dropping v from consideration entirely.
			if next, g, ok := gc.BestTarget(v, func(t int32) bool {
				return h.BlockWeight(t)+h.Weight(v) > cfg.MaxPartWeight(t, h.TotalWeight())
			}); ok {
				pq.Insert(v, next, g)
				queuedPart[v] = next
			}
			continue
		}

		before := gaincache.CaptureBeforeCounts(h, v, from, to)
		if err := h.ChangeNodePart(v, from, to); err != nil {
			continue
		}
		gc.Update(v, from, to, before)
		gc.Forget(v)

		runningGain += gain
		moves = append(moves, move{v: v, from: from, to: to, gain: gain})

		if runningGain > bestGain {
			bestGain = runningGain
			bestPrefixLen = len(moves)
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		// v itself may still be a border node under a different target.
		if h.BorderNode(v) && !h.IsFixed(v) {
			gc.InitVertex(v)
			if t, g, ok := gc.BestTarget(v, nil); ok {
				pq.Insert(v, t, g)
				queuedPart[v] = t
			}
		}

		// refresh neighbours whose gains this move invalidated.
		for _, e := range h.IncidentEdges(v) {
			for _, w := range h.Pins(e) {
				if w == v || !h.IsActive(w) || h.IsFixed(w) {
					continue
				}
				if !gc.Has(w) {
					continue
				}
				gc.Forget(w)
				if h.BorderNode(w) {
					requeue(w)
				} else {
					unqueue(w)
				}
			}
		}
	}

	r.rollback(h, moves, bestPrefixLen)
}

// rollback undoes every move past bestPrefixLen, restoring h to the state
// that produced the best cumulative gain seen during the pass.
func (r *Refiner) rollback(h *hypergraph.Hypergraph, moves []move, bestPrefixLen int) {
	for i := len(moves) - 1; i >= bestPrefixLen; i-- {
		m := moves[i]
		_ = h.ChangeNodePart(m.v, m.to, m.from)
	}
}
