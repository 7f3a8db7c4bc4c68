// Package report writes analysis results to the filesystem using an atomic
// temp-file-then-rename pattern, so a reader interrupted mid-write never
// sees a truncated result file.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/shgo"
)

// Document is the on-disk shape of a written result: the engine's Result
// plus the run metadata needed to reproduce it.
type Document struct {
	Objective  string           `json:"objective"`
	Dimensions int              `json:"dimensions"`
	LB         []float64        `json:"lb"`
	UB         []float64        `json:"ub"`
	NumBasins  int              `json:"num_basins"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	Evaluations int64           `json:"evaluation_count"`
	Minima     []MinimumPoint   `json:"minima"`
	GeneratedAt string         `json:"generated_at"`
}

// MinimumPoint is the JSON projection of shgo.MinimumPoint.
type MinimumPoint struct {
	X []float64 `json:"x"`
	F float64   `json:"f"`
}

// FromResult builds a Document from an engine Result. generatedAt is passed
// in rather than computed with time.Now so callers control reproducibility
// in tests.
func FromResult(objectiveName string, lb, ub []float64, res shgo.Result, generatedAt time.Time) Document {
	minima := make([]MinimumPoint, len(res.LocalMinima))
	for i, m := range res.LocalMinima {
		minima[i] = MinimumPoint{X: m.Minimizer, F: m.Objective}
	}
	return Document{
		Objective:   objectiveName,
		Dimensions:  len(lb),
		LB:          lb,
		UB:          ub,
		NumBasins:   res.NumBasins,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
		Evaluations: res.EvaluationCount,
		Minima:      minima,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteFile serializes doc as indented JSON to path using a temp file plus
// rename, so a reader never observes a partially written file.
func WriteFile(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal document: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("report: write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("report: rename into place: %w", err)
	}

	slog.Debug("report written", "path", path, "basins", doc.NumBasins, "minima", len(doc.Minima))
	return nil
}

// ReadFile loads a previously written Document.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("report: read file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("report: unmarshal document: %w", err)
	}
	return doc, nil
}
