package rpc

import (
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

// Wire representations. Amounts render as decimal JSON numbers; all
// arithmetic stays in cents on the server side.

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Owner     string   `json:"owner"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

type SplitDetail struct {
	Email    string       `json:"email"`
	Amount   money.Amount `json:"amount"`
	Excluded bool         `json:"excluded"`
}

type Expense struct {
	ID        string        `json:"id"`
	GroupID   string        `json:"groupId"`
	Title     string        `json:"title"`
	Amount    money.Amount  `json:"amount"`
	PaidBy    string        `json:"paidBy"`
	SplitType string        `json:"splitType"`
	Splits    []SplitDetail `json:"splits"`
	CreatedAt int64         `json:"createdAt"`
}

type Payment struct {
	ID        string       `json:"id"`
	GroupID   string       `json:"groupId"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Amount    money.Amount `json:"amount"`
	Kind      string       `json:"kind"`
	Note      string       `json:"note,omitempty"`
	CreatedAt int64        `json:"createdAt"`
}

type DebtEdge struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount money.Amount `json:"amount"`
}

// Auth procedures.

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User management procedures (admin only).

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UpdateUserRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

type DeleteUserResponse struct{}

// Group procedures.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupsRequest struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	SortBy string `json:"sortBy,omitempty"` // "newest" (default) or "oldest"
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalGroups int `json:"totalGroups"`
}

type ListGroupsResponse struct {
	Groups     []Group    `json:"groups"`
	Pagination Pagination `json:"pagination"`
}

type RenameGroupRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type MemberRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}

type RemoveMemberResponse struct {
	Group Group `json:"group"`
	// LeftoverBalance is the removed member's balance at removal time.
	// Non-zero means the caller removed someone who still owed or was
	// owed money.
	LeftoverBalance money.Amount `json:"leftoverBalance"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// Ledger procedures.

type AddExpenseRequest struct {
	GroupID      string        `json:"groupId"`
	Title        string        `json:"title"`
	Amount       money.Amount  `json:"amount"`
	PaidBy       string        `json:"paidBy"`
	SplitType    string        `json:"splitType"`
	SplitDetails []SplitDetail `json:"splitDetails"`
}

type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type ListPaymentsRequest struct {
	GroupID string `json:"groupId"`
}

type ListPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type SummaryRequest struct {
	GroupID string `json:"groupId"`
}

type SummaryResponse struct {
	Balances   map[string]money.Amount `json:"balances"`
	Debts      []DebtEdge              `json:"debts"`
	TotalSpent money.Amount            `json:"totalSpent"`
}

type RecordPaymentRequest struct {
	GroupID   string       `json:"groupId"`
	FromEmail string       `json:"fromEmail"`
	ToEmail   string       `json:"toEmail"`
	Amount    money.Amount `json:"amount"`
	Note      string       `json:"note,omitempty"`
}

type PaymentResponse struct {
	Payment Payment `json:"payment"`
}

type SettleGroupRequest struct {
	GroupID string `json:"groupId"`
}

type SettleGroupResponse struct {
	// Payments are the synthetic zeroing payments appended by the
	// settlement; empty when the group was already balanced.
	Payments []Payment `json:"payments"`
}

type OverallBalancesRequest struct{}

type FriendBalance struct {
	Email  string       `json:"email"`
	Amount money.Amount `json:"amount"`
}

type OverallBalancesResponse struct {
	Friends []FriendBalance `json:"friends"`
}

// Conversions from domain records.

func toUser(u *models.User) User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

func toGroup(g *models.Group) Group {
	return Group{ID: g.ID, Name: g.Name, Owner: g.Owner, Members: g.Members, CreatedAt: g.CreatedAt}
}

func toExpense(e *models.Expense) Expense {
	splits := make([]SplitDetail, len(e.Shares))
	for i, share := range e.Shares {
		splits[i] = SplitDetail{Email: share.Member, Amount: share.Amount, Excluded: share.Excluded}
	}
	return Expense{
		ID:        e.ID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Amount:    e.Amount,
		PaidBy:    e.PaidBy,
		SplitType: e.SplitMode,
		Splits:    splits,
		CreatedAt: e.CreatedAt,
	}
}

func toPayment(p *models.Payment) Payment {
	return Payment{
		ID:        p.ID,
		GroupID:   p.GroupID,
		From:      p.From,
		To:        p.To,
		Amount:    p.Amount,
		Kind:      string(p.Kind),
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func toDebtEdges(edges []ledger.DebtEdge) []DebtEdge {
	out := make([]DebtEdge, len(edges))
	for i, e := range edges {
		out[i] = DebtEdge{From: e.From, To: e.To, Amount: e.Amount}
	}
	return out
}

func toSummary(s *service.GroupSummary) SummaryResponse {
	return SummaryResponse{
		Balances:   s.Balances,
		Debts:      toDebtEdges(s.Debts),
		TotalSpent: s.TotalSpent,
	}
}
