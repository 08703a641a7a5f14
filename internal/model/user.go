package model

import "time"

// User represents an application user record as stored in the
// `users` table. Accounts are never physically removed; the Deleted
// flag soft-deletes them and every query that serves user data is
// expected to filter on it. Handlers define separate response types
// with JSON tags; this struct mirrors columns only.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique email address (stored lowercased).
//	PasswordHash – bcrypt hashed password.
//	Phone        – contact phone number.
//	Age          – age in years.
//	Location     – free-form city/neighbourhood.
//	IsAdmin      – grants access to the admin surface.
//	Deleted      – soft-delete flag.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Age          int       // users.age
	Location     string    // users.location
	IsAdmin      bool      // users.is_admin
	Deleted      bool      // users.deleted
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role returns the JWT role claim value for the user. There are only
// two roles in this system.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Role claim values embedded in access tokens.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
