package context

import (
	"github.com/spf13/viper"

	"hypart/internal/hperrors"
)

// LoadINI overlays a KaHyPar-style preset .ini file onto c, the way
// pkg/util/config.go points viper at a named config file and reads it in —
// generalised here to an explicit path and an "ini" config type instead of
// a hardcoded ./data/config.yaml, since presets are selected at the CLI by
// -p rather than baked into the binary.
func LoadINI(path string, c *Context) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	if err := v.ReadInConfig(); err != nil {
		return hperrors.WrapIOError(err, "reading preset file %s", path)
	}

	get := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	getInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	getFloat := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	getBool := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	var objective, mode string
	get("general.objective", &objective)
	get("general.mode", &mode)
	if objective != "" {
		c.Objective = Objective(objective)
	}
	if mode != "" {
		c.Mode = Mode(mode)
	}
	getInt("general.k", &c.K)
	getFloat("general.epsilon", &c.Epsilon)
	getInt("general.vcycles", &c.VCycles)
	if v.IsSet("general.cmaxnet") {
		c.CMaxNet = v.GetInt64("general.cmaxnet")
	}

	get("coarsening.algorithm", &c.Coarsening.Algorithm)
	get("coarsening.rating-function", &c.Coarsening.RatingFunction)
	get("coarsening.acceptance-policy", &c.Coarsening.AcceptancePolicy)
	get("coarsening.heavy-node-penalty", &c.Coarsening.HeavyNodePenalty)
	get("coarsening.fixed-vertex-acceptance", &c.Coarsening.FixedVertexAcceptance)
	getFloat("coarsening.contraction-limit-multiplier", &c.Coarsening.ContractionLimitMultiplier)
	getFloat("coarsening.max-allowed-weight-multiplier", &c.Coarsening.MaxAllowedWeightMultiplier)
	getBool("coarsening.community-aware", &c.Coarsening.CommunityAware)

	get("initial-partitioning.technique", &c.InitialPartitioning.Technique)
	getInt("initial-partitioning.nruns", &c.InitialPartitioning.NumRuns)
	getBool("initial-partitioning.parallel", &c.InitialPartitioning.Parallel)

	get("refinement.fm-stopping-rule", &c.Refinement.FMStoppingRule)
	getFloat("refinement.fm-adaptive-alpha", &c.Refinement.FMAdaptiveAlpha)
	getInt("refinement.iterations-per-level", &c.Refinement.IterationsPerLevel)
	getBool("refinement.use-random-tie-breaking", &c.Refinement.UseRandomTieBreaking)
	get("refinement.flow-network", &c.Refinement.FlowNetworkPolicy)
	get("refinement.flow-execution", &c.Refinement.FlowExecutionPolicy)
	getFloat("refinement.flow-alpha", &c.Refinement.FlowRegionAlpha)
	get("refinement.max-flow-engine", &c.Refinement.MaxFlowEngine)
	getBool("refinement.most-balanced-minimum-cut", &c.Refinement.UseMostBalancedMinCut)
	getBool("refinement.ignore-small-hyperedge-cut", &c.Refinement.IgnoreSmallHyperedgeCut)
	getBool("refinement.use-adaptive-alpha-stopping-rule", &c.Refinement.UseAdaptiveAlphaStoppingRule)

	getFloat("evolutionary.time-limit", &c.Evolutionary.TimeLimitSeconds)
	getBool("evolutionary.dynamic-population-size", &c.Evolutionary.DynamicPopulationSize)
	getInt("evolutionary.population-size", &c.Evolutionary.PopulationSize)
	getFloat("evolutionary.target-fraction", &c.Evolutionary.TargetFraction)
	getFloat("evolutionary.gamma", &c.Evolutionary.Gamma)
	get("evolutionary.replace-strategy", &c.Evolutionary.ReplaceStrategy)
	get("evolutionary.combine-strategy", &c.Evolutionary.CombineStrategy)
	get("evolutionary.mutate-strategy", &c.Evolutionary.MutateStrategy)
	getInt("evolutionary.diversify-interval", &c.Evolutionary.DiversifyInterval)
	getFloat("evolutionary.mutation-chance", &c.Evolutionary.MutationChance)
	getFloat("evolutionary.edge-frequency-chance", &c.Evolutionary.EdgeFrequencyChance)
	getFloat("evolutionary.stable-net-percentage", &c.Evolutionary.StableNetPercentage)

	return nil
}
