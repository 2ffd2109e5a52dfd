package http

import (
	"net/http"
	"time"

	"fintrack/internal/amqp"
)

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	month, year, err := requireMonthYear(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	key := periodKey(owner, month, year)

	progress, ok := s.progressCache.Get(key)
	if !ok {
		if progress, err = s.budgets.Progress(r.Context(), owner, month, year); err != nil {
			writeError(w, r, err)
			return
		}
		s.progressCache.Set(key, progress)
	}

	out := make([]progressResponse, len(progress))
	for i, p := range progress {
		out[i] = toProgressResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := requireMonthYear(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := userID(r)
	key := periodKey(owner, month, year)

	summary, ok := s.summaryCache.Get(key)
	if !ok {
		if summary, err = s.budgets.PeriodSummary(r.Context(), owner, month, year); err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(key, summary)
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// handleReportExport queues an async export of one monthly summary to
// the configured spreadsheet.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	month, year, err := requireMonthYear(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s.exports == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "export_unavailable",
			Message: "report export is not configured",
		})
		return
	}

	err = s.exports.PublishReportExport(r.Context(), amqp.ReportExportMessage{
		UserID:      userID(r),
		Month:       month,
		Year:        year,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
