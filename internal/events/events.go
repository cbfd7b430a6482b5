// Package events publishes ledger activity to interested consumers.
//
// Publishing is best-effort bookkeeping for downstream listeners
// (notification workers, activity feeds); the ledger itself never
// depends on an event having been delivered.
package events

import (
	"context"
	"time"

	"github.com/splitledger/splitledger/internal/money"
)

// Event types emitted by the service layer.
const (
	TypeExpenseAdded    = "expense.added"
	TypePaymentRecorded = "payment.recorded"
	TypeGroupSettled    = "group.settled"
)

// Event is one ledger activity record.
type Event struct {
	Type      string       `json:"type"`
	GroupID   string       `json:"group_id"`
	Actor     string       `json:"actor,omitempty"`
	RefID     string       `json:"ref_id,omitempty"`
	Amount    money.Amount `json:"amount,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
