// Package context implements C12 (the immutable-after-setup parameter bag
// consumed by every other component) together with its ambient scaffolding:
// CLI/ini loading (C13) and struct-tag validation (C18).
package context

import (
	"fmt"
	"strings"

	enlocale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en "github.com/go-playground/validator/v10/translations/en"

	"hypart/internal/hperrors"
)

type Objective string

const (
	ObjectiveCut  Objective = "cut"
	ObjectiveKm1  Objective = "km1"
)

type Mode string

const (
	ModeRecursive Mode = "recursive"
	ModeDirect    Mode = "direct"
)

type CoarseningContext struct {
	Algorithm                string  `validate:"oneof=ml_style heavy_full heavy_lazy"`
	RatingFunction           string  `validate:"oneof=heavy_edge edge_frequency"`
	AcceptancePolicy         string  `validate:"oneof=random prefer_unmatched"`
	HeavyNodePenalty         string  `validate:"oneof=multiplicative no_penalty"`
	FixedVertexAcceptance    string  `validate:"oneof=free_vertex_only fixed_vertex_allowed equivalent_vertices"`
	CommunityAware           bool
	ContractionLimitMultiplier float64 `validate:"gt=0"`
	MaxAllowedWeightMultiplier float64 `validate:"gt=0"`
}

type InitialPartitioningContext struct {
	Technique string `validate:"oneof=flat multilevel"`
	NumRuns   int    `validate:"gte=1"`
	Parallel  bool
}

type RefinementContext struct {
	FMStoppingRule            string  `validate:"oneof=simple adaptive_opt"`
	FMAdaptiveAlpha           float64 `validate:"gte=0"`
	IterationsPerLevel        int     `validate:"gte=1"`
	UseRandomTieBreaking      bool
	FlowNetworkPolicy         string  `validate:"oneof=lawler heuer wong hybrid"`
	FlowExecutionPolicy       string  `validate:"oneof=constant exponential multilevel"`
	FlowRegionAlpha           float64 `validate:"gt=0"`
	MaxFlowEngine             string  `validate:"oneof=edmondkarp pushrelabel bk ibfs"`
	UseMostBalancedMinCut     bool
	IgnoreSmallHyperedgeCut   bool
	UseAdaptiveAlphaStoppingRule bool
}

type EvolutionaryContext struct {
	TimeLimitSeconds       float64 `validate:"gte=0"`
	DynamicPopulationSize  bool
	PopulationSize         int     `validate:"gte=0"`
	TargetFraction         float64 `validate:"gte=0,lte=1"`
	Gamma                  float64 `validate:"gte=0"`
	ReplaceStrategy        string  `validate:"oneof=worst diverse strong-diverse"`
	CombineStrategy        string  `validate:"oneof=basic edge_frequency with_edge_frequency_information"`
	MutateStrategy         string  `validate:"oneof=vcycle new_initial_partitioning_vcycle"`
	DiversifyInterval      int     `validate:"gte=0"`
	MutationChance         float64 `validate:"gte=0,lte=1"`
	EdgeFrequencyChance    float64 `validate:"gte=0,lte=1"`
	StableNetPercentage    float64 `validate:"gte=0,lte=1"`
}

// Context is C12: a plain record enumerating every recognised option,
// immutable once Validate() has passed and the pipeline starts reading it.
type Context struct {
	HypergraphFile    string `validate:"required"`
	K                 int    `validate:"gte=2"`
	Epsilon           float64 `validate:"gte=0,lt=1"`
	Objective         Objective `validate:"oneof=cut km1"`
	Mode              Mode      `validate:"oneof=recursive direct"`
	PresetFile        string
	Seed              int64
	CMaxNet           int64 // -1 means "no threshold" (∞); see DESIGN.md open-question decision
	VCycles           int   `validate:"gte=0"`
	FixedVerticesFile string
	UseIndividualBlockWeights bool
	BlockWeights      []int64

	Coarsening          CoarseningContext
	InitialPartitioning InitialPartitioningContext
	Refinement          RefinementContext
	Evolutionary        EvolutionaryContext
}

// Default returns a Context populated with the same defaults the CLI flags
// fall back to, so tests and library callers don't have to restate every
// field.
func Default() *Context {
	return &Context{
		K:         2,
		Epsilon:   0.03,
		Objective: ObjectiveCut,
		Mode:      ModeDirect,
		CMaxNet:   -1,
		Coarsening: CoarseningContext{
			Algorithm:                  "heavy_lazy",
			RatingFunction:             "heavy_edge",
			AcceptancePolicy:           "prefer_unmatched",
			HeavyNodePenalty:           "multiplicative",
			FixedVertexAcceptance:      "free_vertex_only",
			ContractionLimitMultiplier: 160,
			MaxAllowedWeightMultiplier: 3.25,
		},
		InitialPartitioning: InitialPartitioningContext{
			Technique: "flat",
			NumRuns:   20,
		},
		Refinement: RefinementContext{
			FMStoppingRule:      "simple",
			FMAdaptiveAlpha:     1,
			IterationsPerLevel:  1,
			FlowNetworkPolicy:   "hybrid",
			FlowExecutionPolicy: "exponential",
			FlowRegionAlpha:     4,
			MaxFlowEngine:       "pushrelabel",
		},
		Evolutionary: EvolutionaryContext{
			TimeLimitSeconds: 0,
			PopulationSize:   20,
			TargetFraction:   0.15,
			Gamma:             0.25,
			ReplaceStrategy:   "worst",
			CombineStrategy:   "basic",
			MutateStrategy:    "vcycle",
			DiversifyInterval: 50,
			MutationChance:    0.25,
		},
	}
}

// Validate runs struct-tag validation over the whole Context and, on
// failure, translates every field error into an English sentence instead of
// surfacing the raw validator output, wrapping the combined message in a
// ConfigError. It also enforces the two cross-field rules spec.md calls out
// explicitly: recursive mode is incompatible with v-cycles, and epsilon is
// forced to zero when individual block weights are supplied.
func (c *Context) Validate() error {
	if c.UseIndividualBlockWeights {
		c.Epsilon = 0
	}
	if c.Mode == ModeRecursive && c.VCycles > 0 {
		return hperrors.NewConfigError("recursive mode is incompatible with vcycles > 0")
	}

	v := validator.New()
	eng := enlocale.New()
	uni := ut.New(eng, eng)
	translator, _ := uni.GetTranslator("en")
	_ = en.RegisterDefaultTranslations(v, translator)

	if err := v.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return hperrors.WrapConfigError(err, "validation failed")
		}
		var msgs []string
		for _, fe := range verrs {
			msgs = append(msgs, fe.Translate(translator))
		}
		return hperrors.NewConfigError("%s", strings.Join(msgs, "; "))
	}

	if c.UseIndividualBlockWeights && len(c.BlockWeights) != c.K {
		return hperrors.NewConfigError("--blockweights must supply exactly k=%d weights, got %d", c.K, len(c.BlockWeights))
	}
	return nil
}

func (c *Context) String() string {
	return fmt.Sprintf("Context{k=%d eps=%.3f objective=%s mode=%s}", c.K, c.Epsilon, c.Objective, c.Mode)
}

// MaxPartWeight returns the per-block weight cap: (1+ε)·⌈c(V)/k⌉, or the
// individually-specified block weight when UseIndividualBlockWeights is set.
func (c *Context) MaxPartWeight(block int32, totalWeight int64) int64 {
	if c.UseIndividualBlockWeights {
		return c.BlockWeights[block]
	}
	perfectlyBalanced := (totalWeight + int64(c.K) - 1) / int64(c.K)
	return int64((1.0 + c.Epsilon) * float64(perfectlyBalanced))
}
