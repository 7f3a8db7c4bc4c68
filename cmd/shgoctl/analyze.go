package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/shgo"
	"github.com/cwbudde/shgo/internal/objective"
	"github.com/cwbudde/shgo/internal/report"
)

var (
	analyzeObjective          string
	analyzeOut                string
	analyzeNDivInitial        int
	analyzeNDivMax            int
	analyzeStabilityCount     int
	analyzeThresholdRatio     float64
	analyzeMinDistanceTol     float64
	analyzeLocalMaxIters      int
	analyzeUseGradientPruning bool
	analyzeWorkers            int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the landscape analyzer on a built-in benchmark objective",
	Long:  `Runs the SHGO landscape analyzer and prints every local-minimum basin found.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeObjective, "objective", "", "Benchmark objective name (required, see 'shgoctl list')")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Write the result as JSON to this path (optional)")
	analyzeCmd.Flags().IntVar(&analyzeNDivInitial, "n-div-initial", 8, "Initial per-axis grid divisions")
	analyzeCmd.Flags().IntVar(&analyzeNDivMax, "n-div-max", 25, "Maximum per-axis grid divisions")
	analyzeCmd.Flags().IntVar(&analyzeStabilityCount, "stability-count", 2, "Consecutive stable iterations required to converge")
	analyzeCmd.Flags().Float64Var(&analyzeThresholdRatio, "threshold-ratio", 0.1, "Basin-merge threshold as a fraction of the value range")
	analyzeCmd.Flags().Float64Var(&analyzeMinDistanceTol, "min-distance-tolerance", 0.05, "Minimum L2 distance between reported minima")
	analyzeCmd.Flags().IntVar(&analyzeLocalMaxIters, "local-maxiters", 500, "Max iterations for the local polishing solver")
	analyzeCmd.Flags().BoolVar(&analyzeUseGradientPruning, "gradient-pruning", false, "Narrow star detection with gradient-hull pruning")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Worker goroutines (0 = automatic)")

	analyzeCmd.MarkFlagRequired("objective")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	obj, ok := objective.ByName(analyzeObjective)
	if !ok {
		return fmt.Errorf("unknown objective %q (have: %v)", analyzeObjective, objective.Names())
	}

	slog.Info("starting analysis", "objective", analyzeObjective, "n_div_initial", analyzeNDivInitial, "n_div_max", analyzeNDivMax)

	start := time.Now()
	result, err := shgo.Analyze(obj,
		shgo.WithInitialDivisions(analyzeNDivInitial),
		shgo.WithMaxDivisions(analyzeNDivMax),
		shgo.WithStabilityCount(analyzeStabilityCount),
		shgo.WithThresholdRatio(analyzeThresholdRatio),
		shgo.WithMinDistanceTolerance(analyzeMinDistanceTol),
		shgo.WithLocalMaxIters(analyzeLocalMaxIters),
		shgo.WithGradientPruning(analyzeUseGradientPruning),
		shgo.WithWorkers(analyzeWorkers),
		shgo.WithProgress(func(p shgo.IterationProgress) {
			slog.Debug("iteration complete", "iteration", p.Iteration, "divisions", p.Divisions, "basins", p.NumBasins)
		}),
	)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	slog.Info("analysis complete",
		"elapsed", elapsed,
		"basins", result.NumBasins,
		"minima", len(result.LocalMinima),
		"iterations", result.Iterations,
		"converged", result.Converged,
		"evaluations", result.EvaluationCount,
	)

	fmt.Printf("Found %d basin(s), %d iteration(s), converged=%v, %d evaluations\n",
		result.NumBasins, result.Iterations, result.Converged, result.EvaluationCount)
	for i, m := range result.LocalMinima {
		fmt.Printf("  [%d] f=%.6g x=%v\n", i, m.Objective, m.Minimizer)
	}

	if analyzeOut != "" {
		doc := report.FromResult(analyzeObjective, obj.LB(), obj.UB(), result, start)
		if err := report.WriteFile(analyzeOut, doc); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		fmt.Printf("Wrote %s\n", analyzeOut)
	}

	return nil
}
