package sheets

import (
	"context"

	"fintrack/internal/core"
)

// ReportWriter is the outbound port for monthly report export. The
// worker depends on this, not on the Google client directly.
type ReportWriter interface {
	// WriteSummary appends one monthly summary: a header row, one row
	// per expense category, and a totals row.
	WriteSummary(ctx context.Context, username string, summary core.PeriodSummary) error
}
