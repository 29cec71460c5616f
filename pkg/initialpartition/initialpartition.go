// Package initialpartition implements C5: the flat bisection/k-way
// portfolio run at the coarsest level, with nruns independent trials scored
// by (objective, imbalance) and the best retained.
//
// Trials are embarrassingly parallel — each gets its own forked RNG and
// touches no shared mutable state besides the candidate partition it builds
// from scratch — so this is the one place the teacher's generic
// pkg/concurrent.Pool gets reused, gated behind
// Context.InitialPartitioning.Parallel (off by default; see SPEC_FULL.md §5).
package initialpartition

import (
	"hypart/internal/hprandom"
	"hypart/pkg/coarsening"
	"hypart/pkg/concurrent"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

type Result struct {
	Part      []int32
	Objective int64
	Imbalance float64
}

type trialJob struct {
	index int
	rng   *hprandom.Random
}

// Run executes NumRuns independent trials of the configured Technique and
// returns the best by (objective, imbalance).
func Run(h *hypergraph.Hypergraph, ctx *context.Context, rng *hprandom.Random) *Result {
	ic := ctx.InitialPartitioning
	jobs := make([]trialJob, ic.NumRuns)
	for i := range jobs {
		jobs[i] = trialJob{index: i, rng: rng.Fork(i)}
	}

	runTrial := func(job trialJob) *Result {
		part := assign(h, ctx, job.rng)
		return score(h, ctx, part)
	}

	// the "multilevel" technique mutates h in place (a nested coarsen/
	// uncontract pass, see assignMultilevel), so trials can't run
	// concurrently against the shared hypergraph regardless of ic.Parallel.
	parallel := ic.Parallel && ic.Technique != "multilevel"

	var results []*Result
	if parallel && len(jobs) > 1 {
		pool := concurrent.NewWorkerPool[trialJob, *Result](len(jobs), len(jobs))
		pool.Start(runTrial)
		for _, j := range jobs {
			pool.AddJob(j)
		}
		pool.Close()
		pool.Wait()
		for r := range pool.CollectResults() {
			results = append(results, r)
		}
		if errs := pool.Errs(); len(errs) > 0 {
			panic(errs[0])
		}
	} else {
		for _, j := range jobs {
			results = append(results, runTrial(j))
		}
	}

	best := results[0]
	for _, r := range results[1:] {
		if better(r, best, ctx) {
			best = r
		}
	}
	return best
}

func better(a, b *Result, ctx *context.Context) bool {
	aFeasible, bFeasible := a.Imbalance <= ctx.Epsilon, b.Imbalance <= ctx.Epsilon
	if aFeasible != bFeasible {
		return aFeasible
	}
	if a.Objective != b.Objective {
		return a.Objective < b.Objective
	}
	return a.Imbalance < b.Imbalance
}

// assign runs one trial of the configured technique and returns the
// resulting partition as a plain slice. "flat" builds it on a scratch copy
// of π without touching h; "multilevel" (spec.md §4.5) recurses by coarsening
// h a second time, assigning flat at that deeper level, and uncontracting
// back — so it does mutate h for the duration of the trial, restoring it to
// its original (coarsest-level) state before returning.
func assign(h *hypergraph.Hypergraph, ctx *context.Context, rng *hprandom.Random) []int32 {
	if ctx.InitialPartitioning.Technique == "multilevel" {
		return assignMultilevel(h, ctx, rng)
	}
	return greedyBFS(h, ctx, rng)
}

// assignMultilevel runs a second coarsening pass on top of the level Run was
// called at, flat-assigns the smaller hypergraph, then maps that partition
// back up through the second hierarchy's contraction records — without ever
// calling SetNodePart on h itself, so h's own π stays untouched and the
// second Coarsen/Uncontract round-trip leaves h's structure exactly as it
// found it. Only the returned slice carries the assignment.
func assignMultilevel(h *hypergraph.Hypergraph, ctx *context.Context, rng *hprandom.Random) []int32 {
	coarsener := coarsening.New(&ctx.Coarsening, rng)
	hier := coarsener.Coarsen(h, ctx.K, nil)

	deepPart := greedyBFS(h, ctx, rng)

	// parent[v] = u records that the second coarsening merged v into u;
	// following the chain to its end finds v's surviving representative at
	// the deeper level, the vertex deepPart actually assigned a block to.
	parent := make(map[int32]int32, len(hier.Records))
	for _, rec := range hier.Records {
		parent[rec.V] = rec.U
	}
	representative := func(v int32) int32 {
		for {
			u, ok := parent[v]
			if !ok {
				return v
			}
			v = u
		}
	}

	for i := len(hier.Records) - 1; i >= 0; i-- {
		h.Uncontract(hier.Records[i])
	}

	out := make([]int32, h.NumVertices())
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		if !h.IsActive(v) {
			out[v] = hypergraph.Unassigned
			continue
		}
		out[v] = deepPart[representative(v)]
	}
	return out
}

// greedyBFS grows each block from a random unassigned seed via BFS over the
// hypergraph's vertex-hyperedge incidence, switching to the next block once
// the current one reaches its fair-share weight — the flat technique
// KaHyPar calls "greedy hypergraph growing" generalised here to k blocks.
func greedyBFS(h *hypergraph.Hypergraph, ctx *context.Context, rng *hprandom.Random) []int32 {
	n := h.NumVertices()
	part := make([]int32, n)
	for i := range part {
		part[i] = hypergraph.Unassigned
	}

	var order []int32
	for v := int32(0); v < int32(n); v++ {
		if h.IsActive(v) {
			order = append(order, v)
		}
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	fairShare := h.TotalWeight() / int64(ctx.K)
	if fairShare == 0 {
		fairShare = 1
	}

	block := int32(0)
	var blockWeight int64
	queue := []int32{}
	assigned := 0

	nextSeed := func() int32 {
		for _, v := range order {
			if part[v] == hypergraph.Unassigned && !h.IsFixed(v) {
				return v
			}
		}
		return hypergraph.Unassigned
	}

	for assigned < len(order) {
		if len(queue) == 0 {
			seed := nextSeed()
			if seed == hypergraph.Unassigned {
				break
			}
			queue = append(queue, seed)
		}
		v := queue[0]
		queue = queue[1:]
		if part[v] != hypergraph.Unassigned {
			continue
		}

		target := block
		if h.IsFixed(v) {
			// fixed vertices are assigned in a later pass, once free
			// vertices establish the bulk of each block's growth front;
			// skip for now rather than breaking the BFS front.
			continue
		}

		part[v] = target
		blockWeight += h.Weight(v)
		assigned++
		if blockWeight >= fairShare && block < int32(ctx.K-1) {
			block++
			blockWeight = 0
			queue = nil
		}

		for _, e := range h.IncidentEdges(v) {
			for _, w := range h.Pins(e) {
				if part[w] == hypergraph.Unassigned {
					queue = append(queue, w)
				}
			}
		}
	}

	// fixed vertices and anything the BFS front never reached (disconnected
	// components) get assigned round-robin last. Vertices already inactive
	// (contracted away at a shallower level) are never touched and keep
	// their Unassigned sentinel.
	rr := int32(0)
	for _, v := range order {
		if part[v] == hypergraph.Unassigned {
			part[v] = rr
			rr = (rr + 1) % int32(ctx.K)
		}
	}
	return part
}

// score computes the configured objective and the worst block's fractional
// imbalance for a candidate partition, without mutating h.
func score(h *hypergraph.Hypergraph, ctx *context.Context, part []int32) *Result {
	k := ctx.K
	blockWeight := make([]int64, k)
	for v := 0; v < h.NumVertices(); v++ {
		if !h.IsActive(int32(v)) {
			continue
		}
		blockWeight[part[v]] += h.Weight(int32(v))
	}
	total := h.TotalWeight()
	fair := float64(total) / float64(k)

	var worst float64
	for _, w := range blockWeight {
		imbalance := (float64(w) - fair) / fair
		if imbalance > worst {
			worst = imbalance
		}
	}

	pinCount := make([][]int32, h.NumEdges())
	for e := range pinCount {
		pinCount[e] = make([]int32, k)
	}
	for e := 0; e < h.NumEdges(); e++ {
		if h.IsDisabled(int32(e)) {
			continue
		}
		for _, v := range h.Pins(int32(e)) {
			pinCount[e][part[v]]++
		}
	}

	var objective int64
	for e := 0; e < h.NumEdges(); e++ {
		if h.IsDisabled(int32(e)) {
			continue
		}
		var lambda int32
		for _, c := range pinCount[e] {
			if c > 0 {
				lambda++
			}
		}
		switch ctx.Objective {
		case context.ObjectiveKm1:
			if lambda > 1 {
				objective += h.EdgeWeight(int32(e)) * int64(lambda-1)
			}
		default:
			if lambda >= 2 {
				objective += h.EdgeWeight(int32(e))
			}
		}
	}

	return &Result{Part: part, Objective: objective, Imbalance: worst}
}

// Commit writes a Result's partition into h via SetNodePart. Vertices
// already inactive (contracted away before Run was even called) carry no
// meaningful block in r.Part and are left untouched; they inherit their
// surviving representative's block on Uncontract.
func Commit(h *hypergraph.Hypergraph, r *Result) {
	for v, b := range r.Part {
		if !h.IsActive(int32(v)) {
			continue
		}
		h.SetNodePart(int32(v), b)
	}
}
