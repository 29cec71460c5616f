// Package multilevel implements C10: the COARSEN -> INITIAL_PARTITION ->
// UNCOARSEN_STEP* state machine that drives every other component, plus
// V-cycle repetition and the recursive-bisection alternative to direct
// k-way partitioning.
package multilevel

import (
	"go.uber.org/zap"

	"hypart/internal/hprandom"
	"hypart/pkg/coarsening"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
	"hypart/pkg/initialpartition"
	"hypart/pkg/quotient"
	"hypart/pkg/refinement/fm"
	"hypart/pkg/refinement/flow"
)

type Driver struct {
	cfg    *context.Context
	rng    *hprandom.Random
	logger *zap.Logger
}

func New(cfg *context.Context, rng *hprandom.Random, logger *zap.Logger) *Driver {
	return &Driver{cfg: cfg, rng: rng, logger: logger}
}

// Run partitions h in place according to cfg.Mode, then performs
// cfg.VCycles additional improvement passes (direct mode only — Validate
// already rejects recursive+vcycles>0).
func (d *Driver) Run(h *hypergraph.Hypergraph) {
	if d.cfg.Mode == context.ModeRecursive {
		d.runRecursive(h, h.K())
		return
	}

	d.runOnePass(h, nil)
	for cycle := 0; cycle < d.cfg.VCycles; cycle++ {
		community := snapshotPartition(h)
		d.logger.Debug("starting v-cycle", zap.Int("cycle", cycle))
		d.runOnePass(h, community)
	}
}

// VCycle runs one recoarsen-and-refine pass over h's existing partition,
// restricting coarsening to same-block pairs so the pass can only improve
// on what is already there. It is the entry point the evolutionary driver's
// "vcycle" mutate strategy uses on an individual that already carries a
// full partition, as opposed to Run's own VCycles loop which always starts
// from a fresh initial partitioning first.
func (d *Driver) VCycle(h *hypergraph.Hypergraph) {
	community := snapshotPartition(h)
	d.runOnePass(h, community)
}

// runOnePass is one full COARSEN -> INITIAL_PARTITION -> UNCOARSEN_STEP*
// traversal. community, when non-nil, restricts coarsening to
// same-community pairs — the mechanism a V-cycle uses to recoarsen without
// destroying the previous pass's partition.
func (d *Driver) runOnePass(h *hypergraph.Hypergraph, community []int32) {
	coarsener := coarsening.New(&d.cfg.Coarsening, d.rng)
	hier := coarsener.Coarsen(h, d.cfg.K, community)
	d.logger.Debug("coarsening finished", zap.Int("contractions", len(hier.Records)))

	if community == nil {
		result := initialpartition.Run(h, d.cfg, d.rng)
		initialpartition.Commit(h, result)
		d.logger.Debug("initial partitioning finished",
			zap.Int64("objective", result.Objective), zap.Float64("imbalance", result.Imbalance))
	}

	d.uncoarsenAndRefine(h, hier)
}

// uncoarsenAndRefine replays the contraction hierarchy in reverse, running
// IterationsPerLevel FM passes after each uncontraction step, per spec.md's UNCOARSEN_STEP*
// loop, and gating the (expensive) flow pass on the current level against
// cfg.Refinement.FlowExecutionPolicy.
func (d *Driver) uncoarsenAndRefine(h *hypergraph.Hypergraph, hier *coarsening.Hierarchy) {
	refiner := fm.New(&d.cfg.Refinement, d.rng)
	flowRefiner := flow.New(&d.cfg.Refinement)
	totalLevels := len(hier.Records) + 1

	runFlow := func() {
		if d.cfg.K == 2 {
			flowRefiner.RefinePair(h, d.cfg, 0, 1)
			return
		}
		qg := quotient.Build(h)
		maxRounds := d.cfg.K * d.cfg.K
		for round := 0; round < maxRounds; round++ {
			a, b, ok := qg.NextActivePair()
			if !ok {
				break
			}
			flowRefiner.RefinePair(h, d.cfg, a, b)
			// a flow pass can move vertices far beyond (a,b)'s own cut set,
			// so the quotient graph is rebuilt wholesale rather than patched
			// incrementally — simpler than threading per-move notifications
			// through RefinePair, and the flow solve itself dominates cost.
			qg = quotient.Build(h)
		}
	}

	refineLevel := func(level int) {
		for pass := 0; pass < d.cfg.Refinement.IterationsPerLevel; pass++ {
			refiner.Refine(h, d.cfg)
		}
		if matchesFlowExecutionPolicy(d.cfg.Refinement.FlowExecutionPolicy, level, totalLevels) {
			runFlow()
		}
	}

	refineLevel(0) // coarsest level gets a refinement pass before any uncontraction too.
	for i := len(hier.Records) - 1; i >= 0; i-- {
		h.Uncontract(hier.Records[i])
		refineLevel(totalLevels - i - 1)
	}
}

// matchesFlowExecutionPolicy decides, per spec §4.10 step 3, whether the
// given uncoarsening level is one of the levels flow refinement runs on.
// level is 0 at the coarsest level and totalLevels-1 at the finest.
//
//   - "constant": every level — flow is cheap relative to the rest of the
//     pipeline only for small inputs, but this is the unconditional baseline.
//   - "exponential": level 0 and every level whose distance from the
//     coarsest level is a power of two (0,1,2,4,8,...), so flow runs often
//     while the hypergraph is still small and tapers off as uncoarsening
//     makes each level more expensive to flow over.
//   - "multilevel": only the finest level, i.e. a single flow pass after
//     uncoarsening has fully replayed the hierarchy, the cheapest policy.
func matchesFlowExecutionPolicy(policy string, level, totalLevels int) bool {
	switch policy {
	case "constant":
		return true
	case "multilevel":
		return level == totalLevels-1
	case "exponential":
		return level == 0 || isPowerOfTwo(level)
	default:
		return false
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func snapshotPartition(h *hypergraph.Hypergraph) []int32 {
	out := make([]int32, h.NumVertices())
	for v := 0; v < h.NumVertices(); v++ {
		out[v] = h.Part(int32(v))
	}
	return out
}
