package models

import "github.com/splitledger/splitledger/internal/money"

// PaymentKind distinguishes how a payment entered the ledger.
type PaymentKind string

const (
	// PaymentManual is a payment a member recorded themselves.
	PaymentManual PaymentKind = "payment"
	// PaymentSettlement is a zeroing payment synthesized by a group
	// settlement.
	PaymentSettlement PaymentKind = "settlement"
)

// Payment represents a settlement transfer between two members. It is
// a bookkeeping record only: no money moves through the system. A
// payment references no particular expense; it simply shifts the net
// balances of the two members involved.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// From is the member email of the payer (the debtor settling up).
	From string

	// To is the member email of the receiver (the creditor being paid).
	To string

	// Amount is the payment amount in cents. Always positive.
	Amount money.Amount

	// Kind records whether this row was entered manually or
	// synthesized by a settlement.
	Kind PaymentKind

	// Note is an optional description.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
