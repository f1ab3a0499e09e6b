package ports

import (
	"context"
	"time"

	"riskhypo/domain/core"
	"riskhypo/internal/report"
)

// RunSummary is the listing form of a persisted run
type RunSummary struct {
	RunID            core.RunID `json:"run_id" db:"run_id"`
	InputFingerprint core.Hash  `json:"input_fingerprint" db:"input_fingerprint"`
	GeneratedAt      time.Time  `json:"generated_at" db:"generated_at"`
	ResultCount      int        `json:"result_count" db:"result_count"`
}

// ReportRepository persists reports
type ReportRepository interface {
	Save(ctx context.Context, rep *report.Report) error
	Get(ctx context.Context, runID core.RunID) (*report.Report, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
