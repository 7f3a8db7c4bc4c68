package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/shgo"
)

// runJob executes an analysis job in the background and broadcasts a
// ProgressEvent after each completed refinement iteration.
func runJob(ctx context.Context, jm *JobManager, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("starting analysis job", "job_id", jobID, "objective", job.Config.Objective)

	obj, err := resolveObjective(job.Config.Objective)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	cfg := applyDefaults(job.Config)

	opts := []shgo.Option{
		shgo.WithInitialDivisions(cfg.NDivInitial),
		shgo.WithMaxDivisions(cfg.NDivMax),
		shgo.WithStabilityCount(cfg.StabilityCount),
		shgo.WithThresholdRatio(cfg.ThresholdRatio),
		shgo.WithMinDistanceTolerance(cfg.MinDistanceTolerance),
		shgo.WithLocalMaxIters(cfg.LocalMaxIters),
		shgo.WithGradientPruning(cfg.UseGradientPruning),
		shgo.WithWorkers(cfg.Workers),
		shgo.WithProgress(func(p shgo.IterationProgress) {
			jm.UpdateJob(jobID, func(j *Job) {
				j.Iteration = p.Iteration
				j.NumBasins = p.NumBasins
			})
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:           jobID,
				State:           StateRunning,
				Iteration:       p.Iteration,
				Divisions:       p.Divisions,
				NumBasins:       p.NumBasins,
				EvaluationCount: p.EvaluationCount,
				Timestamp:       time.Now(),
			})
		}),
	}

	start := time.Now()
	result, err := shgo.AnalyzeContext(ctx, obj, opts...)
	elapsed := time.Since(start)

	endTime := time.Now()
	if err != nil {
		state := StateFailed
		if ctx.Err() != nil {
			state = StateCancelled
		}
		jm.UpdateJob(jobID, func(j *Job) {
			j.State = state
			j.Error = err.Error()
			j.EndTime = &endTime
		})
		slog.Error("analysis job failed", "job_id", jobID, "error", err)
		jm.broadcaster.Broadcast(ProgressEvent{JobID: jobID, State: state, Timestamp: endTime})
		return err
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Result = &result
		j.NumBasins = result.NumBasins
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	slog.Info("analysis job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"basins", result.NumBasins,
		"minima", len(result.LocalMinima),
		"evaluations", result.EvaluationCount,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		NumBasins: result.NumBasins,
		Timestamp: endTime,
	})

	return nil
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("job failed", "job_id", jobID, "error", err)
}
