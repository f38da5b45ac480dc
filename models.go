package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleAdmin is the portal administrator role
	RoleAdmin UserRole = "admin"
	// RoleOperator is the day-to-day operator role
	RoleOperator UserRole = "operator"
	// RoleViewer is a read-only role
	RoleViewer UserRole = "viewer"
)

// User is the portal user model. Admin CRUD over this table lives outside
// this package; here it is only the credential source for authentication.
type User struct {
	bun.BaseModel `bun:"table:portal_users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Userid        string     `bun:"userid,notnull,unique" json:"userid,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Role          UserRole   `bun:"user_role" json:"user_role,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RefreshToken is the persisted long-lived session credential. At most one
// row exists per user; rotation replaces the row inside one transaction.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rft"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull" json:"user_id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token is past its expiry at the given instant.
// Expired rows are treated as absent even before the sweeper removes them.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
