package rpc

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

// Procedure paths. The form mirrors Connect's generated services so
// any Connect client can call them.
const (
	ProcRegister = "/splitledger.v1.AuthService/Register"
	ProcLogin    = "/splitledger.v1.AuthService/Login"

	ProcListUsers  = "/splitledger.v1.UserService/ListUsers"
	ProcCreateUser = "/splitledger.v1.UserService/CreateUser"
	ProcUpdateUser = "/splitledger.v1.UserService/UpdateUser"
	ProcDeleteUser = "/splitledger.v1.UserService/DeleteUser"

	ProcCreateGroup  = "/splitledger.v1.GroupService/CreateGroup"
	ProcGetGroup     = "/splitledger.v1.GroupService/GetGroup"
	ProcListGroups   = "/splitledger.v1.GroupService/ListGroups"
	ProcRenameGroup  = "/splitledger.v1.GroupService/RenameGroup"
	ProcAddMember    = "/splitledger.v1.GroupService/AddMember"
	ProcRemoveMember = "/splitledger.v1.GroupService/RemoveMember"
	ProcDeleteGroup  = "/splitledger.v1.GroupService/DeleteGroup"

	ProcAddExpense      = "/splitledger.v1.LedgerService/AddExpense"
	ProcListExpenses    = "/splitledger.v1.LedgerService/ListExpenses"
	ProcListPayments    = "/splitledger.v1.LedgerService/ListPayments"
	ProcGetSummary      = "/splitledger.v1.LedgerService/GetSummary"
	ProcRecordPayment   = "/splitledger.v1.LedgerService/RecordPayment"
	ProcSettleGroup     = "/splitledger.v1.LedgerService/SettleGroup"
	ProcOverallBalances = "/splitledger.v1.LedgerService/GetOverallBalances"
)

// NewHandler builds the full RPC surface. Auth procedures are public;
// everything else requires a valid Bearer token, and the user
// management procedures additionally require the admin role.
func NewHandler(authSvc *service.AuthService, groupSvc *service.GroupService, ledgerSvc *service.LedgerService, userSvc *service.UserService, tokens *auth.JWTManager) http.Handler {
	h := &Handler{auth: authSvc, groups: groupSvc, ledger: ledgerSvc, users: userSvc}

	public := connect.WithOptions(
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	protected := connect.WithOptions(
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireAuth(tokens)),
	)

	mux := http.NewServeMux()

	mux.Handle(ProcRegister, connect.NewUnaryHandler(ProcRegister, h.register, public))
	mux.Handle(ProcLogin, connect.NewUnaryHandler(ProcLogin, h.login, public))

	mux.Handle(ProcListUsers, connect.NewUnaryHandler(ProcListUsers, h.listUsers, protected))
	mux.Handle(ProcCreateUser, connect.NewUnaryHandler(ProcCreateUser, h.createUser, protected))
	mux.Handle(ProcUpdateUser, connect.NewUnaryHandler(ProcUpdateUser, h.updateUser, protected))
	mux.Handle(ProcDeleteUser, connect.NewUnaryHandler(ProcDeleteUser, h.deleteUser, protected))

	mux.Handle(ProcCreateGroup, connect.NewUnaryHandler(ProcCreateGroup, h.createGroup, protected))
	mux.Handle(ProcGetGroup, connect.NewUnaryHandler(ProcGetGroup, h.getGroup, protected))
	mux.Handle(ProcListGroups, connect.NewUnaryHandler(ProcListGroups, h.listGroups, protected))
	mux.Handle(ProcRenameGroup, connect.NewUnaryHandler(ProcRenameGroup, h.renameGroup, protected))
	mux.Handle(ProcAddMember, connect.NewUnaryHandler(ProcAddMember, h.addMember, protected))
	mux.Handle(ProcRemoveMember, connect.NewUnaryHandler(ProcRemoveMember, h.removeMember, protected))
	mux.Handle(ProcDeleteGroup, connect.NewUnaryHandler(ProcDeleteGroup, h.deleteGroup, protected))

	mux.Handle(ProcAddExpense, connect.NewUnaryHandler(ProcAddExpense, h.addExpense, protected))
	mux.Handle(ProcListExpenses, connect.NewUnaryHandler(ProcListExpenses, h.listExpenses, protected))
	mux.Handle(ProcListPayments, connect.NewUnaryHandler(ProcListPayments, h.listPayments, protected))
	mux.Handle(ProcGetSummary, connect.NewUnaryHandler(ProcGetSummary, h.getSummary, protected))
	mux.Handle(ProcRecordPayment, connect.NewUnaryHandler(ProcRecordPayment, h.recordPayment, protected))
	mux.Handle(ProcSettleGroup, connect.NewUnaryHandler(ProcSettleGroup, h.settleGroup, protected))
	mux.Handle(ProcOverallBalances, connect.NewUnaryHandler(ProcOverallBalances, h.overallBalances, protected))

	return mux
}
