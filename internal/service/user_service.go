package service

import (
	"context"
	"log/slog"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// UserService is the administrative user-management surface: listing
// accounts and changing names and roles. Self-service registration
// stays with AuthService.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, authenticator auth.Authenticator) *UserService {
	return &UserService{store: store, authenticator: authenticator}
}

func parseRole(role string) (models.Role, error) {
	switch models.Role(role) {
	case models.RoleAdmin, models.RoleMember:
		return models.Role(role), nil
	default:
		return "", ledger.Validationf("unknown role %q", role)
	}
}

// ListUsers returns every registered account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// CreateUser registers an account on someone's behalf with an explicit
// role.
func (s *UserService) CreateUser(ctx context.Context, email, name, role, password string) (*models.User, error) {
	parsed, err := parseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}

	if user.Role != parsed {
		user.Role = parsed
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	slog.Info("User created by admin", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

// UpdateUser changes the user's display name and role. The email is
// fixed: it identifies the member inside groups and ledgers.
func (s *UserService) UpdateUser(ctx context.Context, userID, name, role string) (*models.User, error) {
	if name == "" {
		return nil, ledger.Validationf("name must not be empty")
	}
	parsed, err := parseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Role = parsed
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes an account. Actor is the admin performing the
// deletion; deleting your own account is refused so an instance cannot
// lose its last administrator by accident. The user's ledger rows stay
// untouched, the email living on as an opaque member identifier.
func (s *UserService) DeleteUser(ctx context.Context, userID, actor string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email == actor {
		return ledger.Validationf("you cannot delete your own account")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	slog.Info("User deleted", "user_id", userID, "email", user.Email, "deleted_by", actor)
	return nil
}
