package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages group membership. It owns no ledger math; the
// one place it touches balances is member removal, where it surfaces
// (but does not block on) an unresolved balance.
type GroupService struct {
	store  storage.Store
	ledger *LedgerService
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, ledgerSvc *LedgerService) *GroupService {
	return &GroupService{store: store, ledger: ledgerSvc}
}

// CreateGroup creates a group owned by owner. The owner is always a
// member; duplicate member entries are collapsed, preserving first
// occurrence order.
func (s *GroupService) CreateGroup(ctx context.Context, name, owner string, members []string) (*models.Group, error) {
	if name == "" {
		return nil, ledger.Validationf("group name must not be empty")
	}
	if owner == "" {
		return nil, ledger.Validationf("group owner must not be empty")
	}

	seen := map[string]bool{owner: true}
	unique := []string{owner}
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}

	group := &models.Group{
		Name:    name,
		Owner:   owner,
		Members: unique,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "owner", owner, "members", len(unique))
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves one page of the member's groups and the total
// number of groups they belong to. The page request is normalized, so
// a zero value means the first page, newest first.
func (s *GroupService) ListGroups(ctx context.Context, member string, page storage.PageRequest) ([]*models.Group, int, error) {
	return s.store.ListGroupsPage(ctx, member, page)
}

// Rename changes the group's display name.
func (s *GroupService) Rename(ctx context.Context, groupID, name string) (*models.Group, error) {
	if name == "" {
		return nil, ledger.Validationf("group name must not be empty")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Name = name
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds a member to the group. Adding an existing member is a
// no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID, member string) (*models.Group, error) {
	if member == "" {
		return nil, ledger.Validationf("member must not be empty")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.HasMember(member) {
		return group, nil
	}
	group.Members = append(group.Members, member)
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// RemoveMember removes a member from the group's member set. The
// group must keep at least one member, and the owner cannot be
// removed. The member's ledger rows stay; if they still carry a
// non-zero balance it is returned so the caller can prompt for a
// settlement, but removal is not blocked.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, member string) (*models.Group, money.Amount, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	if !group.HasMember(member) {
		return nil, 0, ledger.Validationf("%s is not a member of the group", member)
	}
	if member == group.Owner {
		return nil, 0, ledger.Validationf("the group owner cannot be removed")
	}
	if len(group.Members) == 1 {
		return nil, 0, ledger.Validationf("a group must keep at least one member")
	}

	var leftover money.Amount
	if summary, err := s.ledger.summarize(ctx, group); err == nil {
		leftover = summary.Balances[member]
	} else {
		slog.Warn("Could not compute balance for removed member", "group_id", groupID, "member", member, "error", err)
	}

	group.Members = slices.DeleteFunc(group.Members, func(m string) bool { return m == member })
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, 0, err
	}

	if leftover != 0 {
		slog.Warn("Removed member still carries a balance",
			"group_id", groupID, "member", member, "balance", leftover)
	}
	return group, leftover, nil
}

// DeleteGroup removes the group and its ledger.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	return s.store.DeleteGroup(ctx, groupID)
}
