package context

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hypart/internal/hperrors"
)

// FlagSet builds the CLI surface spec.md §6 requires, grounded on the
// stdlib `flag` package the way cmd/engine/main.go registers its own flags
// (one flag.T call per option, defaults supplied inline) rather than a
// third-party CLI framework — this project never reaches for one, so
// neither do we.
type FlagSet struct {
	fs *flag.FlagSet
	c  *Context

	hypergraphFile string
	k              int
	epsilon        float64
	objective      string
	mode           string
	preset         string
	seed           int64
	cmaxnet        int64
	vcycles        int
	fixedVertices  string
	individualBW   bool
	blockWeights   string

	cAlgorithm      string
	cRating         string
	cAcceptance     string
	cPenalty        string
	cFixedVertex    string
	cContractLimit  float64
	cMaxWeightMult  float64

	iTechnique string
	iNumRuns   int
	iParallel  bool

	rFMStopping   string
	rFMAlpha      float64
	rIterations   int
	rRandomTie    bool
	rFlowNetwork  string
	rFlowExec     string
	rFlowAlpha    float64
	rMaxFlowEngine string
	rMostBalanced bool
	rIgnoreSmall  bool
	rAdaptiveStop bool

	timeLimit          float64
	populationSize     int
	dynamicPopulation  bool
	targetFraction     float64
	gamma              float64
	replaceStrategy    string
	combineStrategy    string
	mutateStrategy     string
	diversifyInterval  int
	mutationChance     float64
	edgeFrequencyChance float64
}

// NewFlagSet registers every flag with the same defaults as Default() and
// returns a FlagSet ready for Parse.
func NewFlagSet(programName string) *FlagSet {
	d := Default()
	fset := &FlagSet{fs: flag.NewFlagSet(programName, flag.ContinueOnError), c: d}
	fs := fset.fs

	fs.StringVar(&fset.hypergraphFile, "h", "", "hypergraph input file (required)")
	fs.IntVar(&fset.k, "k", d.K, "number of blocks")
	fs.Float64Var(&fset.epsilon, "e", d.Epsilon, "imbalance tolerance")
	fs.StringVar(&fset.objective, "o", string(d.Objective), "objective: cut|km1")
	fs.StringVar(&fset.mode, "m", string(d.Mode), "mode: recursive|direct")
	fs.StringVar(&fset.preset, "p", "", "preset .ini config file")
	fs.Int64Var(&fset.seed, "seed", d.Seed, "RNG seed")
	fs.Int64Var(&fset.cmaxnet, "cmaxnet", d.CMaxNet, "hyperedge size threshold, stored in the context but not applied by any component (-1 = no threshold)")
	fs.IntVar(&fset.vcycles, "vcycles", d.VCycles, "number of V-cycles")
	fs.StringVar(&fset.fixedVertices, "fixed-vertices", "", "fixed-vertex file")
	fs.BoolVar(&fset.individualBW, "use-individual-blockweights", false, "use --blockweights instead of epsilon")
	fs.StringVar(&fset.blockWeights, "blockweights", "", "space-separated per-block weight caps")

	fs.StringVar(&fset.cAlgorithm, "c-algorithm", d.Coarsening.Algorithm, "coarsening algorithm")
	fs.StringVar(&fset.cRating, "c-rating", d.Coarsening.RatingFunction, "coarsening rating function")
	fs.StringVar(&fset.cAcceptance, "c-acceptance", d.Coarsening.AcceptancePolicy, "coarsening tie acceptance policy")
	fs.StringVar(&fset.cPenalty, "c-penalty", d.Coarsening.HeavyNodePenalty, "coarsening heavy-node penalty")
	fs.StringVar(&fset.cFixedVertex, "c-fixed-vertex-acceptance", d.Coarsening.FixedVertexAcceptance, "fixed-vertex contraction policy")
	fs.Float64Var(&fset.cContractLimit, "c-contraction-limit-multiplier", d.Coarsening.ContractionLimitMultiplier, "t: coarsening stops at |V| <= t*k")
	fs.Float64Var(&fset.cMaxWeightMult, "c-max-allowed-weight-multiplier", d.Coarsening.MaxAllowedWeightMultiplier, "s: per-vertex weight cap s*c(V)/(t*k)")

	fs.StringVar(&fset.iTechnique, "i-technique", d.InitialPartitioning.Technique, "initial partitioning technique")
	fs.IntVar(&fset.iNumRuns, "i-nruns", d.InitialPartitioning.NumRuns, "initial partitioning trials")
	fs.BoolVar(&fset.iParallel, "i-parallel", d.InitialPartitioning.Parallel, "run initial partitioning trials concurrently")

	fs.StringVar(&fset.rFMStopping, "r-fm-stopping-rule", d.Refinement.FMStoppingRule, "FM stopping rule")
	fs.Float64Var(&fset.rFMAlpha, "r-fm-adaptive-alpha", d.Refinement.FMAdaptiveAlpha, "FM adaptive_opt alpha parameter")
	fs.IntVar(&fset.rIterations, "r-iterations-per-level", d.Refinement.IterationsPerLevel, "FM passes per level")
	fs.BoolVar(&fset.rRandomTie, "r-use-random-tie-breaking", d.Refinement.UseRandomTieBreaking, "random tie-breaking in the k-way PQ")
	fs.StringVar(&fset.rFlowNetwork, "r-flow-network", d.Refinement.FlowNetworkPolicy, "flow network modelling policy")
	fs.StringVar(&fset.rFlowExec, "r-flow-execution", d.Refinement.FlowExecutionPolicy, "flow execution policy")
	fs.Float64Var(&fset.rFlowAlpha, "r-flow-alpha", d.Refinement.FlowRegionAlpha, "flow region weight-bound alpha")
	fs.StringVar(&fset.rMaxFlowEngine, "r-max-flow-engine", d.Refinement.MaxFlowEngine, "max-flow engine")
	fs.BoolVar(&fset.rMostBalanced, "r-most-balanced-minimum-cut", d.Refinement.UseMostBalancedMinCut, "enable most-balanced-min-cut post-processing")
	fs.BoolVar(&fset.rIgnoreSmall, "r-ignore-small-hyperedge-cut", d.Refinement.IgnoreSmallHyperedgeCut, "ignore small cut hyperedges in flow refinement")
	fs.BoolVar(&fset.rAdaptiveStop, "r-use-adaptive-alpha-stopping-rule", d.Refinement.UseAdaptiveAlphaStoppingRule, "stop adaptive-alpha loop when cut stops improving")

	fs.Float64Var(&fset.timeLimit, "time-limit", d.Evolutionary.TimeLimitSeconds, "evolutionary wall-clock budget, seconds (0 disables the evolutionary driver)")
	fs.IntVar(&fset.populationSize, "population-size", d.Evolutionary.PopulationSize, "fixed evolutionary population size")
	fs.BoolVar(&fset.dynamicPopulation, "dynamic-population-size", d.Evolutionary.DynamicPopulationSize, "scale population size from target-fraction * time-limit / single-run-time")
	fs.Float64Var(&fset.targetFraction, "target-fraction", d.Evolutionary.TargetFraction, "dynamic population size target fraction")
	fs.Float64Var(&fset.gamma, "gamma", d.Evolutionary.Gamma, "evolutionary gamma parameter")
	fs.StringVar(&fset.replaceStrategy, "replace-strategy", d.Evolutionary.ReplaceStrategy, "evolutionary replace strategy")
	fs.StringVar(&fset.combineStrategy, "combine-strategy", d.Evolutionary.CombineStrategy, "evolutionary combine strategy")
	fs.StringVar(&fset.mutateStrategy, "mutate-strategy", d.Evolutionary.MutateStrategy, "evolutionary mutate strategy")
	fs.IntVar(&fset.diversifyInterval, "diversify-interval", d.Evolutionary.DiversifyInterval, "iterations between diversification")
	fs.Float64Var(&fset.mutationChance, "mutation-chance", d.Evolutionary.MutationChance, "probability of mutation over combine")
	fs.Float64Var(&fset.edgeFrequencyChance, "edge-frequency-chance", d.Evolutionary.EdgeFrequencyChance, "edge_frequency combine strategy chance")

	return fset
}

// Parse parses argv (excluding the program name), optionally overlaying a
// preset .ini file beneath the CLI defaults so CLI-supplied values win —
// FlagSet.Visit only reports flags the caller actually set, which is how we
// detect "value came from the CLI" vs "value is just the flag default".
func (fset *FlagSet) Parse(args []string) (*Context, error) {
	if err := fset.fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		return nil, hperrors.WrapConfigError(err, "parsing flags")
	}

	c := Default()
	if fset.preset != "" {
		if err := LoadINI(fset.preset, c); err != nil {
			return nil, err
		}
	}

	set := make(map[string]bool)
	fset.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	apply := func(name string, fn func()) {
		if set[name] {
			fn()
		}
	}

	apply("h", func() { c.HypergraphFile = fset.hypergraphFile })
	apply("k", func() { c.K = fset.k })
	apply("e", func() { c.Epsilon = fset.epsilon })
	apply("o", func() { c.Objective = Objective(fset.objective) })
	apply("m", func() { c.Mode = Mode(fset.mode) })
	apply("seed", func() { c.Seed = fset.seed })
	apply("cmaxnet", func() { c.CMaxNet = fset.cmaxnet })
	apply("vcycles", func() { c.VCycles = fset.vcycles })
	apply("fixed-vertices", func() { c.FixedVerticesFile = fset.fixedVertices })
	apply("use-individual-blockweights", func() { c.UseIndividualBlockWeights = fset.individualBW })
	apply("blockweights", func() {
		weights, err := parseBlockWeights(fset.blockWeights)
		if err == nil {
			c.BlockWeights = weights
		}
	})

	apply("c-algorithm", func() { c.Coarsening.Algorithm = fset.cAlgorithm })
	apply("c-rating", func() { c.Coarsening.RatingFunction = fset.cRating })
	apply("c-acceptance", func() { c.Coarsening.AcceptancePolicy = fset.cAcceptance })
	apply("c-penalty", func() { c.Coarsening.HeavyNodePenalty = fset.cPenalty })
	apply("c-fixed-vertex-acceptance", func() { c.Coarsening.FixedVertexAcceptance = fset.cFixedVertex })
	apply("c-contraction-limit-multiplier", func() { c.Coarsening.ContractionLimitMultiplier = fset.cContractLimit })
	apply("c-max-allowed-weight-multiplier", func() { c.Coarsening.MaxAllowedWeightMultiplier = fset.cMaxWeightMult })

	apply("i-technique", func() { c.InitialPartitioning.Technique = fset.iTechnique })
	apply("i-nruns", func() { c.InitialPartitioning.NumRuns = fset.iNumRuns })
	apply("i-parallel", func() { c.InitialPartitioning.Parallel = fset.iParallel })

	apply("r-fm-stopping-rule", func() { c.Refinement.FMStoppingRule = fset.rFMStopping })
	apply("r-fm-adaptive-alpha", func() { c.Refinement.FMAdaptiveAlpha = fset.rFMAlpha })
	apply("r-iterations-per-level", func() { c.Refinement.IterationsPerLevel = fset.rIterations })
	apply("r-use-random-tie-breaking", func() { c.Refinement.UseRandomTieBreaking = fset.rRandomTie })
	apply("r-flow-network", func() { c.Refinement.FlowNetworkPolicy = fset.rFlowNetwork })
	apply("r-flow-execution", func() { c.Refinement.FlowExecutionPolicy = fset.rFlowExec })
	apply("r-flow-alpha", func() { c.Refinement.FlowRegionAlpha = fset.rFlowAlpha })
	apply("r-max-flow-engine", func() { c.Refinement.MaxFlowEngine = fset.rMaxFlowEngine })
	apply("r-most-balanced-minimum-cut", func() { c.Refinement.UseMostBalancedMinCut = fset.rMostBalanced })
	apply("r-ignore-small-hyperedge-cut", func() { c.Refinement.IgnoreSmallHyperedgeCut = fset.rIgnoreSmall })
	apply("r-use-adaptive-alpha-stopping-rule", func() { c.Refinement.UseAdaptiveAlphaStoppingRule = fset.rAdaptiveStop })

	apply("time-limit", func() { c.Evolutionary.TimeLimitSeconds = fset.timeLimit })
	apply("population-size", func() { c.Evolutionary.PopulationSize = fset.populationSize })
	apply("dynamic-population-size", func() { c.Evolutionary.DynamicPopulationSize = fset.dynamicPopulation })
	apply("target-fraction", func() { c.Evolutionary.TargetFraction = fset.targetFraction })
	apply("gamma", func() { c.Evolutionary.Gamma = fset.gamma })
	apply("replace-strategy", func() { c.Evolutionary.ReplaceStrategy = fset.replaceStrategy })
	apply("combine-strategy", func() { c.Evolutionary.CombineStrategy = fset.combineStrategy })
	apply("mutate-strategy", func() { c.Evolutionary.MutateStrategy = fset.mutateStrategy })
	apply("diversify-interval", func() { c.Evolutionary.DiversifyInterval = fset.diversifyInterval })
	apply("mutation-chance", func() { c.Evolutionary.MutationChance = fset.mutationChance })
	apply("edge-frequency-chance", func() { c.Evolutionary.EdgeFrequencyChance = fset.edgeFrequencyChance })

	if c.HypergraphFile == "" {
		return nil, hperrors.NewConfigError("-h hypergraph-file is required")
	}
	if c.Mode == ModeRecursive && c.VCycles > 0 {
		return nil, hperrors.NewConfigError("mode=recursive is incompatible with vcycles > 0")
	}

	return c, nil
}

func (fset *FlagSet) Usage() { fset.fs.Usage() }

func parseBlockWeights(s string) ([]int64, error) {
	fields := strings.Fields(s)
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid block weight %q: %w", f, err)
		}
		out = append(out, n)
	}
	return out, nil
}
