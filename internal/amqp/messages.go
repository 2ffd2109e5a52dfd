package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage is published when an expense pushes a budget over
// its limit for the month it covers. It carries enough to record the
// alert without another lookup.
type BudgetAlertMessage struct {
	BudgetID   int64     `json:"budget_id"`
	UserID     int64     `json:"user_id"`
	CategoryID int64     `json:"category_id"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	SpentCents int64     `json:"spent_cents"`
	LimitCents int64     `json:"limit_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportExportMessage asks the worker to export one user's monthly
// summary to the configured spreadsheet.
type ReportExportMessage struct {
	UserID      int64     `json:"user_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	RequestedAt time.Time `json:"requested_at"`
}

func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
