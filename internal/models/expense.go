package models

import "github.com/splitledger/splitledger/internal/money"

// Expense represents an amount one member paid on behalf of the group.
// Expenses are immutable once written; a group settlement appends
// compensating Payments rather than touching expense rows.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the human-readable description (e.g., "Dinner").
	Title string

	// Amount is the expense total in cents. Always positive.
	Amount money.Amount

	// PaidBy is the member email of the payer. Must be a group member
	// at the time the expense is recorded.
	PaidBy string

	// SplitMode records how the shares were produced ("equal" or
	// "unequal"). Informational; the shares themselves are the source
	// of truth for balance computation.
	SplitMode string

	// Shares is the per-member division of Amount. Non-excluded share
	// amounts sum to Amount exactly; excluded shares are zero.
	Shares []ExpenseShare

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is one member's portion of an expense.
type ExpenseShare struct {
	// Member is the member email this share belongs to.
	Member string

	// Amount is the share in cents. Zero for excluded members.
	Amount money.Amount

	// Excluded marks members who sat this expense out.
	Excluded bool
}
