// Package service orchestrates the ledger engine over the storage and
// event layers: recording expenses and payments, computing group
// summaries and settling groups.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/splitledger/splitledger/internal/events"
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// groupLocks hands out one mutex per group so that expense creation,
// payment recording and settlement for the same group are mutually
// exclusive. Locks are never released back; the map grows with the
// number of active groups, which is small.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *groupLocks) get(groupID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[groupID] = m
	}
	return m
}

// LedgerService is the settlement coordinator: every write to a group
// ledger and every derived view goes through here.
type LedgerService struct {
	store  storage.Store
	events events.Publisher
	locks  *groupLocks
}

// NewLedgerService creates a coordinator over the given store.
// publisher may be nil, in which case events are discarded.
func NewLedgerService(store storage.Store, publisher events.Publisher) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerService{
		store:  store,
		events: publisher,
		locks:  newGroupLocks(),
	}
}

// AddExpenseInput carries a new expense request. Splits lists every
// group member with their exclusion flag and, in unequal mode, their
// manual amount. An empty Splits means "all members, included".
type AddExpenseInput struct {
	GroupID string
	Title   string
	Amount  money.Amount
	PaidBy  string
	Mode    ledger.SplitMode
	Splits  []ledger.Participant
}

// GroupSummary is the derived view of one group's ledger.
type GroupSummary struct {
	GroupID    string
	Balances   map[string]money.Amount
	Debts      []ledger.DebtEdge
	TotalSpent money.Amount
}

// AddExpense validates and appends a new expense to the group ledger.
// The shares are allocated by the split engine, so they always sum to
// the expense amount exactly.
func (s *LedgerService) AddExpense(ctx context.Context, in AddExpenseInput) (*models.Expense, error) {
	lock := s.locks.get(in.GroupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	if in.Title == "" {
		return nil, ledger.Validationf("expense title must not be empty")
	}
	if !group.HasMember(in.PaidBy) {
		return nil, ledger.Validationf("payer %s is not a member of the group", in.PaidBy)
	}

	participants := in.Splits
	if len(participants) == 0 {
		participants = make([]ledger.Participant, len(group.Members))
		for i, m := range group.Members {
			participants[i] = ledger.Participant{Member: m}
		}
	}
	for _, p := range participants {
		if !group.HasMember(p.Member) {
			return nil, ledger.Validationf("split references %s, not a member of the group", p.Member)
		}
	}

	shares, err := ledger.Allocate(in.Amount, in.Mode, participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:   in.GroupID,
		Title:     in.Title,
		Amount:    in.Amount,
		PaidBy:    in.PaidBy,
		SplitMode: string(in.Mode),
		Shares:    make([]models.ExpenseShare, len(shares)),
	}
	for i, share := range shares {
		expense.Shares[i] = models.ExpenseShare{
			Member:   share.Member,
			Amount:   share.Amount,
			Excluded: share.Excluded,
		}
	}

	if err := s.store.AppendExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("append expense: %w", err)
	}

	metrics.ExpensesRecorded.Inc()
	s.publish(ctx, events.Event{
		Type:    events.TypeExpenseAdded,
		GroupID: in.GroupID,
		Actor:   in.PaidBy,
		RefID:   expense.ID,
		Amount:  in.Amount,
	})

	return expense, nil
}

// RecordPayment appends a manual settlement payment from one member to
// another. Overpaying a debt is allowed; it simply flips the balance
// direction afterwards.
func (s *LedgerService) RecordPayment(ctx context.Context, groupID, from, to string, amount money.Amount, note string) (*models.Payment, error) {
	lock := s.locks.get(groupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, ledger.Validationf("payment amount must be positive, got %s", amount)
	}
	if !group.HasMember(from) {
		return nil, ledger.Validationf("payer %s is not a member of the group", from)
	}
	if !group.HasMember(to) {
		return nil, ledger.Validationf("payee %s is not a member of the group", to)
	}
	if from == to {
		return nil, ledger.Validationf("payer and payee must differ")
	}

	payment := &models.Payment{
		GroupID: groupID,
		From:    from,
		To:      to,
		Amount:  amount,
		Kind:    models.PaymentManual,
		Note:    note,
	}
	if err := s.store.AppendPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("append payment: %w", err)
	}

	metrics.PaymentsRecorded.WithLabelValues(string(models.PaymentManual)).Inc()
	s.publish(ctx, events.Event{
		Type:    events.TypePaymentRecorded,
		GroupID: groupID,
		Actor:   from,
		RefID:   payment.ID,
		Amount:  amount,
	})

	return payment, nil
}

// SettleGroup zeroes every balance in the group by appending one
// synthetic payment per simplified debt edge. Ledger rows are never
// touched, so the operation is idempotent: settling an already
// balanced group appends nothing and succeeds.
func (s *LedgerService) SettleGroup(ctx context.Context, groupID, actor string) ([]*models.Payment, error) {
	lock := s.locks.get(groupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(group.Members) == 0 {
		return nil, ledger.Validationf("group has no members to settle")
	}

	summary, err := s.summarize(ctx, group)
	if err != nil {
		return nil, err
	}

	payments := make([]*models.Payment, 0, len(summary.Debts))
	for _, edge := range summary.Debts {
		payments = append(payments, &models.Payment{
			GroupID: groupID,
			From:    edge.From,
			To:      edge.To,
			Amount:  edge.Amount,
			Kind:    models.PaymentSettlement,
			Note:    "group settlement",
		})
	}

	// One transaction: a reader must never see a settlement half
	// applied.
	if err := s.store.AppendPayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("append settlement payments: %w", err)
	}
	metrics.PaymentsRecorded.WithLabelValues(string(models.PaymentSettlement)).Add(float64(len(payments)))

	metrics.GroupsSettled.Inc()
	s.publish(ctx, events.Event{
		Type:    events.TypeGroupSettled,
		GroupID: groupID,
		Actor:   actor,
	})

	return payments, nil
}

// Summary computes the group's balances, simplified debts and total
// spend from the full ledger.
func (s *LedgerService) Summary(ctx context.Context, groupID string) (*GroupSummary, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, group)
}

// ListExpenses returns the group's expenses, oldest first.
func (s *LedgerService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, groupID)
}

// ListPayments returns the group's payments, oldest first.
func (s *LedgerService) ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, groupID)
}

// FriendBalance is one counterparty's net position against a member,
// across all shared groups. Positive means the friend owes the member.
type FriendBalance struct {
	Member string
	Amount money.Amount
}

// OverallBalances aggregates a member's simplified debts across every
// group they belong to. Group summaries are independent, so they are
// computed concurrently.
func (s *LedgerService) OverallBalances(ctx context.Context, member string) ([]FriendBalance, error) {
	groups, err := s.store.ListGroupsByMember(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	summaries := make([]*GroupSummary, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			summary, err := s.summarize(ctx, group)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	friends := make(map[string]money.Amount)
	for _, summary := range summaries {
		for _, debt := range summary.Debts {
			switch member {
			case debt.From:
				friends[debt.To] -= debt.Amount
			case debt.To:
				friends[debt.From] += debt.Amount
			}
		}
	}

	result := make([]FriendBalance, 0, len(friends))
	for friend, amount := range friends {
		if amount == 0 {
			continue
		}
		result = append(result, FriendBalance{Member: friend, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Member < result[j].Member })

	return result, nil
}

// summarize folds the ledger for one group. Balances are computed over
// the union of the current member set and every identifier the ledger
// references, so members removed while still carrying a balance keep
// showing up until resolved; the caller decides what to do about them.
func (s *LedgerService) summarize(ctx context.Context, group *models.Group) (*GroupSummary, error) {
	expenses, err := s.store.ListExpenses(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	members := balanceMembers(group, expenses, payments)

	ledgerExpenses := make([]ledger.Expense, len(expenses))
	var totalSpent money.Amount
	for i, exp := range expenses {
		shares := make([]ledger.Share, len(exp.Shares))
		for j, share := range exp.Shares {
			shares[j] = ledger.Share{Member: share.Member, Amount: share.Amount, Excluded: share.Excluded}
		}
		ledgerExpenses[i] = ledger.Expense{Payer: exp.PaidBy, Amount: exp.Amount, Shares: shares}
		totalSpent += exp.Amount
	}

	ledgerPayments := make([]ledger.Payment, len(payments))
	for i, p := range payments {
		ledgerPayments[i] = ledger.Payment{From: p.From, To: p.To, Amount: p.Amount}
	}

	balances, err := ledger.ComputeBalances(members, ledgerExpenses, ledgerPayments)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.SimplifyDuration)
	debts, err := ledger.Simplify(balances)
	timer.ObserveDuration()
	if err != nil {
		return nil, err
	}

	return &GroupSummary{
		GroupID:    group.ID,
		Balances:   balances,
		Debts:      debts,
		TotalSpent: totalSpent,
	}, nil
}

// balanceMembers returns the current members plus any identifier the
// ledger still references, extras in sorted order after the member
// list.
func balanceMembers(group *models.Group, expenses []*models.Expense, payments []*models.Payment) []string {
	seen := make(map[string]bool, len(group.Members))
	members := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		if !seen[m] {
			seen[m] = true
			members = append(members, m)
		}
	}

	var extras []string
	add := func(member string) {
		if !seen[member] {
			seen[member] = true
			extras = append(extras, member)
		}
	}
	for _, exp := range expenses {
		add(exp.PaidBy)
		for _, share := range exp.Shares {
			add(share.Member)
		}
	}
	for _, p := range payments {
		add(p.From)
		add(p.To)
	}

	sort.Strings(extras)
	return append(members, extras...)
}

func (s *LedgerService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish ledger event", "type", event.Type, "group_id", event.GroupID, "error", err)
	}
}
