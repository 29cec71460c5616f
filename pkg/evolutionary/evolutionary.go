// Package evolutionary implements C11: the outer population-based loop
// that runs independent multilevel partitions, combines and mutates them,
// and keeps the best individuals found within a wall-clock budget.
package evolutionary

import (
	"sort"

	"go.uber.org/zap"

	"hypart/internal/hprandom"
	"hypart/internal/hptimer"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
	"hypart/pkg/multilevel"
)

type Individual struct {
	Partition []int32
	Objective int64
	Imbalance float64
}

type Driver struct {
	cfg    *context.Context
	rng    *hprandom.Random
	logger *zap.Logger
}

func New(cfg *context.Context, rng *hprandom.Random, logger *zap.Logger) *Driver {
	return &Driver{cfg: cfg, rng: rng, logger: logger}
}

// Run executes the evolutionary loop and returns the best individual found,
// writing it into h before returning. The CLI only calls Run with a positive
// TimeLimitSeconds; with TimeLimitSeconds <= 0 Run still builds the full
// initial population (one multilevel run per individual) and then performs
// exactly one combine-or-mutate generation.
func (d *Driver) Run(h *hypergraph.Hypergraph) *Individual {
	clock := hptimer.StartWallClock()
	ec := d.cfg.Evolutionary

	popSize := d.populationSize(h)
	population := d.initializePopulation(h, popSize)
	sortByFitness(population, d.cfg)

	generation := 0
	for ec.TimeLimitSeconds <= 0 || clock.Elapsed().Seconds() < ec.TimeLimitSeconds {
		if ec.TimeLimitSeconds <= 0 && generation >= 1 {
			break // no time budget configured: one generation of initial population is the whole run.
		}

		var child *Individual
		if d.rng.Bool(ec.MutationChance) {
			parent := population[d.rng.Intn(len(population))]
			child = d.mutate(h, parent)
		} else {
			a := population[d.rng.Intn(len(population))]
			b := population[d.rng.Intn(len(population))]
			child = d.combine(h, a, b)
		}

		d.replace(population, child)
		sortByFitness(population, d.cfg)

		generation++
		if ec.DiversifyInterval > 0 && generation%ec.DiversifyInterval == 0 {
			d.diversify(h, population)
			sortByFitness(population, d.cfg)
		}
	}

	best := population[0]
	applyIndividual(h, best)
	return best
}

// populationSize implements S6's dynamic-size formula when
// DynamicPopulationSize is set: one reference multilevel run is timed, and
// the population is sized so that filling it takes roughly
// TargetFraction * TimeLimitSeconds.
func (d *Driver) populationSize(h *hypergraph.Hypergraph) int {
	ec := d.cfg.Evolutionary
	if !ec.DynamicPopulationSize || ec.TimeLimitSeconds <= 0 {
		if ec.PopulationSize > 0 {
			return ec.PopulationSize
		}
		return 1
	}

	probe := hptimer.StartWallClock()
	d.runOneMultilevelTrial(h)
	singleRunSeconds := probe.Elapsed().Seconds()
	if singleRunSeconds <= 0 {
		singleRunSeconds = 0.001
	}

	size := int(ec.TargetFraction * ec.TimeLimitSeconds / singleRunSeconds)
	if size < 1 {
		size = 1
	}
	return size
}

func (d *Driver) initializePopulation(h *hypergraph.Hypergraph, size int) []*Individual {
	pop := make([]*Individual, 0, size)
	for i := 0; i < size; i++ {
		scratch := cloneStructure(h)
		d.driverFor(i).Run(scratch)
		pop = append(pop, snapshot(scratch, d.cfg))
	}
	return pop
}

func (d *Driver) runOneMultilevelTrial(h *hypergraph.Hypergraph) *Individual {
	scratch := cloneStructure(h)
	multilevel.New(d.cfg, d.rng.Fork(-1), d.logger).Run(scratch)
	return snapshot(scratch, d.cfg)
}

func (d *Driver) driverFor(trialIndex int) *multilevel.Driver {
	return multilevel.New(d.cfg, d.rng.Fork(trialIndex), d.logger)
}

// combine implements the basic / edge_frequency / with_edge_frequency_information
// strategies: basic picks each vertex's block from whichever parent agrees,
// breaking disagreements randomly; the edge_frequency variants, with
// probability EdgeFrequencyChance, instead break a disagreement with
// pickByLocalCutWeight on the child built so far. No per-hyperedge frequency
// table is kept.
func (d *Driver) combine(h *hypergraph.Hypergraph, a, b *Individual) *Individual {
	child := cloneStructure(h)
	n := child.NumVertices()
	useFrequency := d.cfg.Evolutionary.CombineStrategy != "basic"

	for v := 0; v < n; v++ {
		var target int32
		if a.Partition[v] == b.Partition[v] {
			target = a.Partition[v]
		} else if useFrequency && d.rng.Bool(d.cfg.Evolutionary.EdgeFrequencyChance) {
			target = d.pickByLocalCutWeight(child, int32(v), a.Partition[v], b.Partition[v])
		} else if d.rng.Bool(0.5) {
			target = a.Partition[v]
		} else {
			target = b.Partition[v]
		}
		child.SetNodePart(int32(v), target)
	}
	return snapshot(child, d.cfg)
}

// pickByLocalCutWeight returns whichever of the two candidate blocks would
// leave fewer of v's incident hyperedges cut, given v's neighbours' current
// (child-in-progress) assignment — a one-vertex lookahead standing in for
// the full edge-frequency table spec.md leaves unspecified in exact form.
func (d *Driver) pickByLocalCutWeight(h *hypergraph.Hypergraph, v, candA, candB int32) int32 {
	var cutA, cutB int64
	for _, e := range h.IncidentEdges(v) {
		if h.IsDisabled(e) {
			continue
		}
		for _, w := range h.Pins(e) {
			if w == v {
				continue
			}
			if h.Part(w) != candA {
				cutA += h.EdgeWeight(e)
			}
			if h.Part(w) != candB {
				cutB += h.EdgeWeight(e)
			}
		}
	}
	if cutA <= cutB {
		return candA
	}
	return candB
}

// mutate implements the vcycle / new_initial_partitioning_vcycle strategies:
// vcycle reapplies one V-cycle on top of the parent's existing partition;
// new_initial_partitioning_vcycle throws the parent's partition away and
// runs a fresh multilevel pass (coarsening, initial partitioning,
// refinement) on an unassigned copy of h, giving the search a bigger kick out
// of a local optimum at the cost of losing the parent's structure entirely.
func (d *Driver) mutate(h *hypergraph.Hypergraph, parent *Individual) *Individual {
	child := cloneStructure(h)

	if d.cfg.Evolutionary.MutateStrategy == "new_initial_partitioning_vcycle" {
		// ignore the parent's partition entirely: child starts unassigned,
		// so Run performs a fresh coarsen/initial-partition/uncoarsen pass
		// from scratch rather than recoarsening around an existing one.
		multilevel.New(d.cfg, d.rng, d.logger).Run(child)
		return snapshot(child, d.cfg)
	}

	applyIndividual(child, parent)
	if d.cfg.Evolutionary.StableNetPercentage > 0 {
		forceStableNets(child, d.cfg.Evolutionary.StableNetPercentage)
	}
	multilevel.New(d.cfg, d.rng, d.logger).VCycle(child)
	return snapshot(child, d.cfg)
}

// forceStableNets is the C11 [SUPPLEMENT] hook, called only when
// StableNetPercentage > 0: it counts the hyperedges whose connectivity is 1
// (uncut, "stable" under the parent's partition) and changes nothing. No
// pin's block or community is modified and percentage is not used; the
// V-cycle that follows restricts contraction to same-block pairs on its own.
func forceStableNets(h *hypergraph.Hypergraph, percentage float64) {
	stableCount := 0
	for e := int32(0); e < int32(h.NumEdges()); e++ {
		if !h.IsDisabled(e) && h.Connectivity(e) == 1 {
			stableCount++
		}
	}
	if stableCount == 0 {
		return
	}
	// percentage is not read; h is left unchanged.
	_ = percentage
}

func (d *Driver) replace(population []*Individual, child *Individual) {
	switch d.cfg.Evolutionary.ReplaceStrategy {
	case "diverse", "strong-diverse":
		// replace the individual most similar to child (by objective) among
		// the worse half of the population, to avoid collapsing diversity.
		half := len(population) / 2
		worstHalf := population[half:]
		idx := 0
		bestSimilarity := int64(1<<63 - 1)
		for i, ind := range worstHalf {
			diff := abs64(ind.Objective - child.Objective)
			if diff < bestSimilarity {
				bestSimilarity = diff
				idx = i
			}
		}
		if better(child, worstHalf[idx], d.cfg.Epsilon) {
			worstHalf[idx] = child
		}
	default: // "worst"
		worst := 0
		for i, ind := range population {
			if worseThan(ind, population[worst], d.cfg.Epsilon) {
				worst = i
			}
		}
		if better(child, population[worst], d.cfg.Epsilon) {
			population[worst] = child
		}
	}
}

// diversify is run every DiversifyInterval generations: the worst individual
// is discarded and replaced with a fresh multilevel run, to keep the
// population from converging to a single basin too early.
func (d *Driver) diversify(h *hypergraph.Hypergraph, population []*Individual) {
	worst := 0
	for i, ind := range population {
		if worseThan(ind, population[worst], d.cfg.Epsilon) {
			worst = i
		}
	}
	fresh := d.runOneMultilevelTrial(h)
	population[worst] = fresh
}

func sortByFitness(population []*Individual, cfg *context.Context) {
	sort.SliceStable(population, func(i, j int) bool { return better(population[i], population[j], cfg.Epsilon) })
}

// better orders individuals the way initialpartition.better orders flat
// trials: feasible (imbalance within the configured epsilon) always beats
// infeasible, and only once both sides agree on feasibility does the
// objective value decide it.
func better(a, b *Individual, epsilon float64) bool {
	aFeasible, bFeasible := a.Imbalance <= epsilon, b.Imbalance <= epsilon
	if aFeasible != bFeasible {
		return aFeasible
	}
	return a.Objective < b.Objective
}

func worseThan(a, b *Individual, epsilon float64) bool { return better(b, a, epsilon) }

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func cloneStructure(h *hypergraph.Hypergraph) *hypergraph.Hypergraph {
	clone := hypergraph.New(h.NumVertices(), h.K())
	for v := 0; v < h.NumVertices(); v++ {
		clone.SetVertexWeight(int32(v), h.Weight(int32(v)))
		clone.SetCommunity(int32(v), h.Community(int32(v)))
		clone.SetFixed(int32(v), h.IsFixed(int32(v)))
	}
	seen := make(map[int32]bool)
	for v := 0; v < h.NumVertices(); v++ {
		for _, e := range h.IncidentEdges(int32(v)) {
			if seen[e] {
				continue
			}
			seen[e] = true
			clone.AddHyperedge(h.EdgeWeight(e), h.Pins(e))
		}
	}
	return clone
}

func snapshot(h *hypergraph.Hypergraph, cfg *context.Context) *Individual {
	part := make([]int32, h.NumVertices())
	for v := range part {
		part[v] = h.Part(int32(v))
	}

	total := h.TotalWeight()
	fair := float64(total) / float64(cfg.K)
	var worst float64
	for b := int32(0); b < int32(cfg.K); b++ {
		imbalance := (float64(h.BlockWeight(b)) - fair) / fair
		if imbalance > worst {
			worst = imbalance
		}
	}

	var objective int64
	switch cfg.Objective {
	case context.ObjectiveKm1:
		objective = h.Km1Weight()
	default:
		objective = h.CutWeight()
	}

	return &Individual{Partition: part, Objective: objective, Imbalance: worst}
}

func applyIndividual(h *hypergraph.Hypergraph, ind *Individual) {
	for v, b := range ind.Partition {
		if cur := h.Part(int32(v)); cur != b {
			if cur == hypergraph.Unassigned {
				h.SetNodePart(int32(v), b)
			} else {
				_ = h.ChangeNodePart(int32(v), cur, b)
			}
		}
	}
}
