package rpc

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage"
)

// Handler implements the RPC procedures over the service layer.
type Handler struct {
	auth   *service.AuthService
	groups *service.GroupService
	ledger *service.LedgerService
	users  *service.UserService
}

// requireAdmin gates the user-management procedures.
func requireAdmin(ctx context.Context) error {
	if !middleware.IsAdmin(ctx) {
		return connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("administrator role required"))
	}
	return nil
}

// memberGroup loads the group and checks that the authenticated caller
// belongs to it. Admins may act on any group.
func (h *Handler) memberGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := h.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	if !group.HasMember(middleware.Email(ctx)) && !middleware.IsAdmin(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("you are not a member of this group"))
	}
	return group, nil
}

// ownedGroup additionally requires the caller to be the group owner
// (or an admin).
func (h *Handler) ownedGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := h.memberGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Owner != middleware.Email(ctx) && !middleware.IsAdmin(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("only the group owner may do this"))
	}
	return group, nil
}

// Auth procedures.

func (h *Handler) register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	user, token, err := h.auth.Register(ctx, req.Msg.Email, req.Msg.Name, req.Msg.Password)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&AuthResponse{Token: token, User: toUser(user)}), nil
}

func (h *Handler) login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	user, token, err := h.auth.Login(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&AuthResponse{Token: token, User: toUser(user)}), nil
}

// User management procedures.

func (h *Handler) listUsers(ctx context.Context, _ *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = toUser(u)
	}
	return connect.NewResponse(&ListUsersResponse{Users: out}), nil
}

func (h *Handler) createUser(ctx context.Context, req *connect.Request[CreateUserRequest]) (*connect.Response[UserResponse], error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	user, err := h.users.CreateUser(ctx, req.Msg.Email, req.Msg.Name, req.Msg.Role, req.Msg.Password)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

func (h *Handler) updateUser(ctx context.Context, req *connect.Request[UpdateUserRequest]) (*connect.Response[UserResponse], error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	user, err := h.users.UpdateUser(ctx, req.Msg.UserID, req.Msg.Name, req.Msg.Role)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

func (h *Handler) deleteUser(ctx context.Context, req *connect.Request[DeleteUserRequest]) (*connect.Response[DeleteUserResponse], error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := h.users.DeleteUser(ctx, req.Msg.UserID, middleware.Email(ctx)); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&DeleteUserResponse{}), nil
}

// Group procedures.

func (h *Handler) createGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := h.groups.CreateGroup(ctx, req.Msg.Name, middleware.Email(ctx), req.Msg.Members)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

func (h *Handler) getGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := h.memberGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

func (h *Handler) listGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	page := storage.PageRequest{
		Page:   req.Msg.Page,
		Limit:  req.Msg.Limit,
		SortBy: req.Msg.SortBy,
	}.Normalize()

	groups, total, err := h.groups.ListGroups(ctx, middleware.Email(ctx), page)
	if err != nil {
		return nil, asConnectError(err)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}

	totalPages := (total + page.Limit - 1) / page.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	return connect.NewResponse(&ListGroupsResponse{
		Groups: out,
		Pagination: Pagination{
			CurrentPage: page.Page,
			TotalPages:  totalPages,
			TotalGroups: total,
		},
	}), nil
}

func (h *Handler) renameGroup(ctx context.Context, req *connect.Request[RenameGroupRequest]) (*connect.Response[GroupResponse], error) {
	if _, err := h.ownedGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	group, err := h.groups.Rename(ctx, req.Msg.GroupID, req.Msg.Name)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

func (h *Handler) addMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[GroupResponse], error) {
	if _, err := h.ownedGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	group, err := h.groups.AddMember(ctx, req.Msg.GroupID, req.Msg.Email)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

func (h *Handler) removeMember(ctx context.Context, req *connect.Request[MemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	if _, err := h.ownedGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	group, leftover, err := h.groups.RemoveMember(ctx, req.Msg.GroupID, req.Msg.Email)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&RemoveMemberResponse{Group: toGroup(group), LeftoverBalance: leftover}), nil
}

func (h *Handler) deleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	if _, err := h.ownedGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	if err := h.groups.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&DeleteGroupResponse{}), nil
}

// Ledger procedures.

func (h *Handler) addExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}

	splits := make([]ledger.Participant, len(req.Msg.SplitDetails))
	for i, d := range req.Msg.SplitDetails {
		splits[i] = ledger.Participant{Member: d.Email, Excluded: d.Excluded, Amount: d.Amount}
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = middleware.Email(ctx)
	}

	expense, err := h.ledger.AddExpense(ctx, service.AddExpenseInput{
		GroupID: req.Msg.GroupID,
		Title:   req.Msg.Title,
		Amount:  req.Msg.Amount,
		PaidBy:  paidBy,
		Mode:    ledger.SplitMode(req.Msg.SplitType),
		Splits:  splits,
	})
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

func (h *Handler) listExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	expenses, err := h.ledger.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e)
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: out}), nil
}

func (h *Handler) listPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	payments, err := h.ledger.ListPayments(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Payment, len(payments))
	for i, p := range payments {
		out[i] = toPayment(p)
	}
	return connect.NewResponse(&ListPaymentsResponse{Payments: out}), nil
}

func (h *Handler) getSummary(ctx context.Context, req *connect.Request[SummaryRequest]) (*connect.Response[SummaryResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	summary, err := h.ledger.Summary(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, asConnectError(err)
	}
	resp := toSummary(summary)
	return connect.NewResponse(&resp), nil
}

func (h *Handler) recordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[PaymentResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	payment, err := h.ledger.RecordPayment(ctx, req.Msg.GroupID, req.Msg.FromEmail, req.Msg.ToEmail, req.Msg.Amount, req.Msg.Note)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Payment: toPayment(payment)}), nil
}

func (h *Handler) settleGroup(ctx context.Context, req *connect.Request[SettleGroupRequest]) (*connect.Response[SettleGroupResponse], error) {
	if _, err := h.memberGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}
	payments, err := h.ledger.SettleGroup(ctx, req.Msg.GroupID, middleware.Email(ctx))
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]Payment, len(payments))
	for i, p := range payments {
		out[i] = toPayment(p)
	}
	return connect.NewResponse(&SettleGroupResponse{Payments: out}), nil
}

func (h *Handler) overallBalances(ctx context.Context, _ *connect.Request[OverallBalancesRequest]) (*connect.Response[OverallBalancesResponse], error) {
	friends, err := h.ledger.OverallBalances(ctx, middleware.Email(ctx))
	if err != nil {
		return nil, asConnectError(err)
	}
	out := make([]FriendBalance, len(friends))
	for i, f := range friends {
		out[i] = FriendBalance{Email: f.Member, Amount: f.Amount}
	}
	return connect.NewResponse(&OverallBalancesResponse{Friends: out}), nil
}
