package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RowResult pairs one batch row with its outcome. Exactly one of Result and
// Err is set.
type RowResult struct {
	RowIndex int         `json:"row_index"`
	Result   *RiskResult `json:"result,omitempty"`
	Err      error       `json:"-"`
}

// BatchSummary aggregates over the successfully scored rows of a batch.
// Failed rows are counted in ErrorCount and excluded from every other figure.
type BatchSummary struct {
	Count          int `json:"count"`
	MalignantCount int `json:"malignant_count"`
	BenignCount    int `json:"benign_count"`
	ErrorCount     int `json:"error_count"`

	confidenceSum float64
}

// MeanConfidence returns the mean confidence over successful rows. When no
// row succeeded it returns ErrNoSuccessfulRows rather than a misleading zero.
func (s BatchSummary) MeanConfidence() (float64, error) {
	if s.Count == 0 {
		return 0, ErrNoSuccessfulRows
	}
	return s.confidenceSum / float64(s.Count), nil
}

// BatchResult holds per-row outcomes in input order plus the summary.
type BatchResult struct {
	PerRow  []RowResult  `json:"per_row"`
	Summary BatchSummary `json:"summary"`
}

// ScoreBatch applies the scorer to each sample independently. A failure on
// one row never aborts the batch; it is captured as that row's typed error.
// Rows are scored concurrently up to workers goroutines (workers < 1 means
// sequential) and results always come back in input row order.
//
// Context cancellation stops launching new rows: rows already scored are
// returned as-is and the remainder carry the context's error, so the summary
// counts are never silently truncated.
func (s *Scorer) ScoreBatch(ctx context.Context, samples []Sample, workers int) *BatchResult {
	if workers < 1 {
		workers = 1
	}

	perRow := make([]RowResult, len(samples))

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range samples {
		if err := ctx.Err(); err != nil {
			perRow[i] = RowResult{RowIndex: i, Err: err}
			continue
		}

		i := i
		g.Go(func() error {
			res, err := s.Score(samples[i])
			perRow[i] = RowResult{RowIndex: i, Result: res, Err: err}
			return nil
		})
	}

	// Row errors are captured per row, never returned by the group.
	_ = g.Wait()

	var summary BatchSummary
	for _, row := range perRow {
		if row.Err != nil {
			summary.ErrorCount++
			continue
		}
		summary.Count++
		summary.confidenceSum += row.Result.Confidence
		switch row.Result.Label {
		case LabelMalignant:
			summary.MalignantCount++
		case LabelBenign:
			summary.BenignCount++
		}
	}

	return &BatchResult{PerRow: perRow, Summary: summary}
}
