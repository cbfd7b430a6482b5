// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitledger/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Sort orders for paginated group listings.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageRequest selects one page of a listing. Zero values fall back to
// the first page with the default limit, newest first.
type PageRequest struct {
	Page   int
	Limit  int
	SortBy string
}

// Normalize clamps the request to valid bounds and resolves defaults,
// so stores and handlers agree on the effective page.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.SortBy != SortOldest {
		p.SortBy = SortNewest
	}
	return p
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Store defines the persistence contract for users, groups and the
// per-group ledger. The ledger side is append-only: expenses and
// payments can be added and listed but never updated or removed.
// This abstraction allows swapping storage backends (SQLite,
// PostgreSQL, in-memory, ...) without changing the engine or the
// service layer.
type Store interface {
	// CreateUser persists a new user. The user's ID and CreatedAt
	// fields are populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers retrieves every registered user, oldest account first.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser replaces the user's display name and role.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, id string) error

	// CreateGroup persists a new group with its member list.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID, members in stored order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember retrieves every group the member belongs to,
	// newest first.
	ListGroupsByMember(ctx context.Context, member string) ([]*models.Group, error)

	// ListGroupsPage retrieves one page of the member's groups plus the
	// total number of groups they belong to.
	ListGroupsPage(ctx context.Context, member string, page PageRequest) ([]*models.Group, int, error)

	// UpdateGroup replaces the group's name and member list.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and its ledger.
	DeleteGroup(ctx context.Context, groupID string) error

	// AppendExpense appends an expense and its shares to the ledger.
	AppendExpense(ctx context.Context, expense *models.Expense) error

	// AppendPayment appends a payment to the ledger.
	AppendPayment(ctx context.Context, payment *models.Payment) error

	// AppendPayments appends a batch of payments in one transaction:
	// either every payment lands in the ledger or none does.
	AppendPayments(ctx context.Context, payments []*models.Payment) error

	// ListExpenses retrieves the group's expenses, oldest first.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListPayments retrieves the group's payments, oldest first.
	ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
