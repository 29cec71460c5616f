package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"hypart/internal/hplog"
	"hypart/internal/hprandom"
	"hypart/pkg/context"
	"hypart/pkg/evolutionary"
	"hypart/pkg/hgio"
	"hypart/pkg/multilevel"
)

var verbose = false

func main() {
	fset := context.NewFlagSet("hypart")
	cfg, err := fset.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fset.Usage()
		os.Exit(2)
	}

	logger, err := hplog.New(verbose)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("partitioning failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *context.Context, logger *zap.Logger) error {
	h, err := hgio.ReadHypergraph(cfg.HypergraphFile, cfg.K)
	if err != nil {
		return err
	}
	logger.Info("read hypergraph",
		zap.String("file", cfg.HypergraphFile),
		zap.Int("vertices", h.NumVertices()),
		zap.Int("edges", h.NumEdges()),
		zap.Int("k", cfg.K))

	if cfg.FixedVerticesFile != "" {
		if err := hgio.ReadFixedVertices(cfg.FixedVerticesFile, h, h.SetNodePart); err != nil {
			return err
		}
	}

	rng := hprandom.New(cfg.Seed)

	if cfg.Evolutionary.TimeLimitSeconds > 0 {
		best := evolutionary.New(cfg, rng, logger).Run(h)
		logger.Info("evolutionary search finished",
			zap.Int64("objective", best.Objective),
			zap.Float64("imbalance", best.Imbalance))
	} else {
		multilevel.New(cfg, rng, logger).Run(h)
	}

	var objective int64
	switch cfg.Objective {
	case context.ObjectiveKm1:
		objective = h.Km1Weight()
	default:
		objective = h.CutWeight()
	}
	logger.Info("partitioning finished", zap.Int64("objective", objective))
	fmt.Printf("objective: %d\n", objective)

	outPath := hgio.PartitionFilename(cfg.HypergraphFile, cfg.K, cfg.Epsilon, cfg.Seed)
	if err := hgio.WritePartition(outPath, h); err != nil {
		return err
	}
	logger.Info("wrote partition file", zap.String("path", outPath))
	return nil
}
