// Package worker consumes budget alert and report export messages and
// performs the slow work the request path must not wait on.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// Worker records budget alerts and exports monthly summaries.
type Worker struct {
	storage *storage.SQLiteRepository
	reports sheets.ReportWriter

	// exported tracks which closed months the periodic sweep has
	// already written this run. Only touched from the sweeper loop.
	exported map[string]bool
}

// New wires the worker. reports may be nil when no spreadsheet is
// configured; export requests are then logged and skipped.
func New(storage *storage.SQLiteRepository, reports sheets.ReportWriter) *Worker {
	return &Worker{
		storage:  storage,
		reports:  reports,
		exported: make(map[string]bool),
	}
}

// HandleBudgetAlert records one budget-exceeded event.
func (w *Worker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	slog.InfoContext(ctx, "Processing budget alert",
		"budget_id", msg.BudgetID,
		"user_id", msg.UserID,
		"spent_cents", msg.SpentCents,
		"limit_cents", msg.LimitCents)

	id, err := w.storage.RecordBudgetAlert(ctx, storage.BudgetAlertRecord{
		BudgetID: msg.BudgetID,
		UserID:   msg.UserID,
		Spent:    core.Money{Cents: msg.SpentCents},
		Limit:    core.Money{Cents: msg.LimitCents},
	})
	if err != nil {
		return fmt.Errorf("record budget alert: %w", err)
	}

	slog.InfoContext(ctx, "Budget alert recorded",
		"alert_id", id,
		"budget_id", msg.BudgetID,
		"exceeded_by_cents", msg.SpentCents-msg.LimitCents)
	return nil
}

// HandleReportExport computes one user's monthly summary and writes it
// to the report sheet.
func (w *Worker) HandleReportExport(ctx context.Context, msg *amqp.ReportExportMessage) error {
	if w.reports == nil {
		slog.WarnContext(ctx, "No report writer configured, skipping export",
			"user_id", msg.UserID,
			"month", msg.Month,
			"year", msg.Year)
		return nil
	}

	user, err := w.storage.GetUser(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("get user for export: %w", err)
	}
	return w.exportUserMonth(ctx, user, msg.Month, msg.Year)
}

func (w *Worker) exportUserMonth(ctx context.Context, user core.User, month, year int) error {
	txs, err := w.storage.ListTransactions(ctx, user.ID, core.TransactionFilter{
		Month: month,
		Year:  year,
	})
	if err != nil {
		return fmt.Errorf("list transactions for export: %w", err)
	}

	summary := core.ComputePeriodSummary(month, year, txs)

	if err := w.reports.WriteSummary(ctx, user.Username, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	slog.InfoContext(ctx, "Monthly summary exported",
		"user_id", user.ID,
		"month", month,
		"year", year,
		"transaction_count", summary.TransactionCount)
	return nil
}

// ExportClosedMonth writes every user's summary for the given month,
// skipping users with no activity in it.
func (w *Worker) ExportClosedMonth(ctx context.Context, month, year int) error {
	if w.reports == nil {
		return nil
	}

	users, err := w.storage.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users for export: %w", err)
	}

	for _, user := range users {
		txs, err := w.storage.ListTransactions(ctx, user.ID, core.TransactionFilter{
			Month: month,
			Year:  year,
		})
		if err != nil {
			return fmt.Errorf("list transactions for export: %w", err)
		}
		if len(txs) == 0 {
			continue
		}

		summary := core.ComputePeriodSummary(month, year, txs)
		if err := w.reports.WriteSummary(ctx, user.Username, summary); err != nil {
			return fmt.Errorf("write summary for %s: %w", user.Username, err)
		}

		slog.InfoContext(ctx, "Monthly summary exported",
			"user_id", user.ID,
			"month", month,
			"year", year,
			"transaction_count", summary.TransactionCount)
	}
	return nil
}

// SweepSessions removes expired sessions. Runs on a timer so dead
// sessions don't accumulate.
func (w *Worker) SweepSessions(ctx context.Context) error {
	n, err := w.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return nil
}

// RunSweeper runs the periodic maintenance loop until the context is
// cancelled: expired-session cleanup plus, when a report writer is
// configured, a once-per-run export of the most recently closed month.
func (w *Worker) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.SweepSessions(ctx); err != nil {
				slog.ErrorContext(ctx, "Session sweep failed", "error", err)
			}
			w.sweepClosedMonth(ctx)
		}
	}
}

func (w *Worker) sweepClosedMonth(ctx context.Context) {
	if w.reports == nil {
		return
	}

	prev := time.Now().UTC().AddDate(0, 0, -time.Now().UTC().Day())
	key := prev.Format("2006-01")
	if w.exported[key] {
		return
	}

	if err := w.ExportClosedMonth(ctx, int(prev.Month()), prev.Year()); err != nil {
		slog.ErrorContext(ctx, "Closed-month export failed", "month", key, "error", err)
		return
	}
	w.exported[key] = true
}
