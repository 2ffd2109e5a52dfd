package amqp

import (
	"testing"
	"time"
)

func TestBudgetAlertMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"budget_id": "not_a_number"}`)

	_, err := BudgetAlertMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("BudgetAlertMessageFromJSON() should fail with invalid JSON")
	}
}

func TestBudgetAlertMessage_RoundTrip(t *testing.T) {
	msg := &BudgetAlertMessage{
		BudgetID:   7,
		UserID:     3,
		CategoryID: 12,
		Month:      6,
		Year:       2024,
		SpentCents: 110_000_000,
		LimitCents: 100_000_000,
		OccurredAt: time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := BudgetAlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("BudgetAlertMessageFromJSON() error = %v", err)
	}
	if parsed.BudgetID != msg.BudgetID || parsed.SpentCents != msg.SpentCents || !parsed.OccurredAt.Equal(msg.OccurredAt) {
		t.Errorf("parsed message differs: %+v", parsed)
	}
}
