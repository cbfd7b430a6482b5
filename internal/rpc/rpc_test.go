package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

// setupTestServer wires the full stack over a temp SQLite store and
// returns the base URL.
func setupTestServer(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-rpc-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, "admin@example.com")
	authSvc := service.NewAuthService(authenticator, tokens)
	ledgerSvc := service.NewLedgerService(store, nil)
	groupSvc := service.NewGroupService(store, ledgerSvc)
	userSvc := service.NewUserService(store, authenticator)

	server := httptest.NewServer(NewHandler(authSvc, groupSvc, ledgerSvc, userSvc, tokens))
	t.Cleanup(server.Close)

	return server.URL
}

// call invokes one procedure with the plain JSON codec, optionally
// authenticated.
func call[Req, Res any](t *testing.T, url, procedure, token string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](http.DefaultClient, url+procedure, connect.WithCodec(jsonCodec{}))
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func registerUser(t *testing.T, url, email, name string) string {
	t.Helper()
	resp, err := call[RegisterRequest, AuthResponse](t, url, ProcRegister, "", &RegisterRequest{
		Email:    email,
		Name:     name,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register failed for %s: %v", email, err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token for %s", email)
	}
	return resp.Token
}

func TestLedgerFlow(t *testing.T) {
	url := setupTestServer(t)

	alice := registerUser(t, url, "alice@example.com", "Alice")
	registerUser(t, url, "bob@example.com", "Bob")

	group, err := call[CreateGroupRequest, GroupResponse](t, url, ProcCreateGroup, alice, &CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"bob@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.Group.Owner != "alice@example.com" || len(group.Group.Members) != 2 {
		t.Fatalf("unexpected group %+v", group.Group)
	}
	groupID := group.Group.ID

	expense, err := call[AddExpenseRequest, ExpenseResponse](t, url, ProcAddExpense, alice, &AddExpenseRequest{
		GroupID:   groupID,
		Title:     "Dinner",
		Amount:    3000,
		SplitType: "equal",
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	// PaidBy defaults to the caller.
	if expense.Expense.PaidBy != "alice@example.com" {
		t.Errorf("paidBy = %s, want the caller", expense.Expense.PaidBy)
	}

	summary, err := call[SummaryRequest, SummaryResponse](t, url, ProcGetSummary, alice, &SummaryRequest{GroupID: groupID})
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.TotalSpent != 3000 {
		t.Errorf("totalSpent = %s, want 30.00", summary.TotalSpent)
	}
	if summary.Balances["bob@example.com"] != -1500 {
		t.Errorf("bob's balance = %s, want -15.00", summary.Balances["bob@example.com"])
	}
	if len(summary.Debts) != 1 || summary.Debts[0].From != "bob@example.com" || summary.Debts[0].Amount != 1500 {
		t.Errorf("debts = %v, want bob owes alice 15.00", summary.Debts)
	}

	settled, err := call[SettleGroupRequest, SettleGroupResponse](t, url, ProcSettleGroup, alice, &SettleGroupRequest{GroupID: groupID})
	if err != nil {
		t.Fatalf("SettleGroup failed: %v", err)
	}
	if len(settled.Payments) != 1 || settled.Payments[0].Kind != "settlement" {
		t.Fatalf("expected 1 settlement payment, got %v", settled.Payments)
	}

	summary, err = call[SummaryRequest, SummaryResponse](t, url, ProcGetSummary, alice, &SummaryRequest{GroupID: groupID})
	if err != nil {
		t.Fatalf("GetSummary after settle failed: %v", err)
	}
	for member, balance := range summary.Balances {
		if balance != 0 {
			t.Errorf("balance[%s] = %s after settlement, want 0", member, balance)
		}
	}
}

func TestAuthAndPermissions(t *testing.T) {
	url := setupTestServer(t)

	alice := registerUser(t, url, "alice@example.com", "Alice")
	bob := registerUser(t, url, "bob@example.com", "Bob")
	carol := registerUser(t, url, "carol@example.com", "Carol")

	group, err := call[CreateGroupRequest, GroupResponse](t, url, ProcCreateGroup, alice, &CreateGroupRequest{
		Name:    "Flat",
		Members: []string{"bob@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := group.Group.ID

	t.Run("missing token", func(t *testing.T) {
		_, err := call[ListGroupsRequest, ListGroupsResponse](t, url, ProcListGroups, "", &ListGroupsRequest{})
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("non-member cannot view the group", func(t *testing.T) {
		_, err := call[GetGroupRequest, GroupResponse](t, url, ProcGetGroup, carol, &GetGroupRequest{GroupID: groupID})
		if connect.CodeOf(err) != connect.CodePermissionDenied {
			t.Errorf("expected permission denied, got %v", err)
		}
	})

	t.Run("member cannot rename, owner can", func(t *testing.T) {
		_, err := call[RenameGroupRequest, GroupResponse](t, url, ProcRenameGroup, bob, &RenameGroupRequest{
			GroupID: groupID, Name: "Bob's Flat",
		})
		if connect.CodeOf(err) != connect.CodePermissionDenied {
			t.Errorf("expected permission denied, got %v", err)
		}

		renamed, err := call[RenameGroupRequest, GroupResponse](t, url, ProcRenameGroup, alice, &RenameGroupRequest{
			GroupID: groupID, Name: "Flat 4B",
		})
		if err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		if renamed.Group.Name != "Flat 4B" {
			t.Errorf("name = %s, want Flat 4B", renamed.Group.Name)
		}
	})

	t.Run("wrong login maps to unauthenticated", func(t *testing.T) {
		_, err := call[LoginRequest, AuthResponse](t, url, ProcLogin, "", &LoginRequest{
			Email: "alice@example.com", Password: "wrong",
		})
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("validation maps to invalid argument", func(t *testing.T) {
		_, err := call[AddExpenseRequest, ExpenseResponse](t, url, ProcAddExpense, alice, &AddExpenseRequest{
			GroupID: groupID, Title: "", Amount: 100, SplitType: "equal",
		})
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})

	t.Run("unknown group maps to not found", func(t *testing.T) {
		_, err := call[GetGroupRequest, GroupResponse](t, url, ProcGetGroup, alice, &GetGroupRequest{GroupID: "nope"})
		if connect.CodeOf(err) != connect.CodeNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestRecordPaymentOverWire(t *testing.T) {
	url := setupTestServer(t)

	alice := registerUser(t, url, "alice@example.com", "Alice")
	registerUser(t, url, "bob@example.com", "Bob")

	group, err := call[CreateGroupRequest, GroupResponse](t, url, ProcCreateGroup, alice, &CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"bob@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	payment, err := call[RecordPaymentRequest, PaymentResponse](t, url, ProcRecordPayment, alice, &RecordPaymentRequest{
		GroupID:   group.Group.ID,
		FromEmail: "bob@example.com",
		ToEmail:   "alice@example.com",
		Amount:    1005,
		Note:      "cash",
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if payment.Payment.Amount != 1005 || payment.Payment.Kind != "payment" {
		t.Errorf("unexpected payment %+v", payment.Payment)
	}

	payments, err := call[ListPaymentsRequest, ListPaymentsResponse](t, url, ProcListPayments, alice, &ListPaymentsRequest{
		GroupID: group.Group.ID,
	})
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments.Payments) != 1 || payments.Payments[0].Note != "cash" {
		t.Errorf("unexpected payments %v", payments.Payments)
	}
}

func TestUserAdministration(t *testing.T) {
	url := setupTestServer(t)

	// Matches the bootstrap admin address the test server is wired with.
	admin := registerUser(t, url, "admin@example.com", "Admin")
	bob := registerUser(t, url, "bob@example.com", "Bob")

	t.Run("member is denied", func(t *testing.T) {
		_, err := call[ListUsersRequest, ListUsersResponse](t, url, ProcListUsers, bob, &ListUsersRequest{})
		if connect.CodeOf(err) != connect.CodePermissionDenied {
			t.Errorf("expected permission denied, got %v", err)
		}
	})

	t.Run("admin lists users", func(t *testing.T) {
		resp, err := call[ListUsersRequest, ListUsersResponse](t, url, ProcListUsers, admin, &ListUsersRequest{})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(resp.Users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(resp.Users))
		}
	})

	t.Run("admin creates, updates and deletes a user", func(t *testing.T) {
		created, err := call[CreateUserRequest, UserResponse](t, url, ProcCreateUser, admin, &CreateUserRequest{
			Email:    "carol@example.com",
			Name:     "Carol",
			Role:     "member",
			Password: "correct horse battery",
		})
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if created.User.Role != "member" {
			t.Errorf("role = %s, want member", created.User.Role)
		}

		updated, err := call[UpdateUserRequest, UserResponse](t, url, ProcUpdateUser, admin, &UpdateUserRequest{
			UserID: created.User.ID,
			Name:   "Caroline",
			Role:   "admin",
		})
		if err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if updated.User.Name != "Caroline" || updated.User.Role != "admin" {
			t.Errorf("unexpected user after update: %+v", updated.User)
		}

		if _, err := call[DeleteUserRequest, DeleteUserResponse](t, url, ProcDeleteUser, admin, &DeleteUserRequest{
			UserID: created.User.ID,
		}); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}

		resp, err := call[ListUsersRequest, ListUsersResponse](t, url, ProcListUsers, admin, &ListUsersRequest{})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(resp.Users) != 2 {
			t.Errorf("expected 2 users after delete, got %d", len(resp.Users))
		}
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		resp, err := call[ListUsersRequest, ListUsersResponse](t, url, ProcListUsers, admin, &ListUsersRequest{})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		var adminID string
		for _, u := range resp.Users {
			if u.Email == "admin@example.com" {
				adminID = u.ID
			}
		}
		_, err = call[DeleteUserRequest, DeleteUserResponse](t, url, ProcDeleteUser, admin, &DeleteUserRequest{UserID: adminID})
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})
}

func TestListGroupsPaginationOverWire(t *testing.T) {
	url := setupTestServer(t)

	alice := registerUser(t, url, "alice@example.com", "Alice")
	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := call[CreateGroupRequest, GroupResponse](t, url, ProcCreateGroup, alice, &CreateGroupRequest{Name: name}); err != nil {
			t.Fatalf("CreateGroup %s failed: %v", name, err)
		}
	}

	resp, err := call[ListGroupsRequest, ListGroupsResponse](t, url, ProcListGroups, alice, &ListGroupsRequest{
		Page:   1,
		Limit:  2,
		SortBy: "oldest",
	})
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Groups) != 2 {
		t.Errorf("expected 2 groups on page 1, got %d", len(resp.Groups))
	}
	if resp.Pagination.TotalPages != 2 || resp.Pagination.CurrentPage != 1 || resp.Pagination.TotalGroups != 3 {
		t.Errorf("unexpected pagination %+v", resp.Pagination)
	}

	resp, err = call[ListGroupsRequest, ListGroupsResponse](t, url, ProcListGroups, alice, &ListGroupsRequest{
		Page:  2,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("ListGroups page 2 failed: %v", err)
	}
	if len(resp.Groups) != 1 {
		t.Errorf("expected 1 group on page 2, got %d", len(resp.Groups))
	}
	if resp.Pagination.CurrentPage != 2 {
		t.Errorf("currentPage = %d, want 2", resp.Pagination.CurrentPage)
	}
}
