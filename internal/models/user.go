package models

// Role controls what a user may do outside their own groups.
// Group-level rights (rename, remove member, delete) additionally
// require group ownership; see the RPC layer.
type Role string

const (
	// RoleAdmin may manage any user or group.
	RoleAdmin Role = "admin"
	// RoleMember is the default role for registered users.
	RoleMember Role = "member"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). It is also the
	// member identifier used in group member lists and ledger rows.
	Email string

	// Name is the display name of the user.
	Name string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Role gates administrative operations.
	Role Role

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser builds a user with the default member role. ID and CreatedAt
// are assigned by the store.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         RoleMember,
	}
}
