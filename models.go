package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's coarse role string
type UserRole = string

const (
	// RoleUser is the default portal member role
	RoleUser UserRole = "user"
	// RoleAdmin can manage the catalog and other users
	RoleAdmin UserRole = "admin"
)

// UserStatus is the account lifecycle status
type UserStatus string

const (
	// UserStatusActive may log in
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended is denied login
	UserStatusSuspended UserStatus = "suspended"
	// UserStatusBlocked is denied login
	UserStatusBlocked UserStatus = "blocked"
	// UserStatusBanned is denied login
	UserStatusBanned UserStatus = "banned"
)

// NormalizeStatus folds case and whitespace; statuses compare
// case-insensitively everywhere.
func NormalizeStatus(s UserStatus) UserStatus {
	return UserStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// User is the credential record as stored by the portal
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	Username      string     `bun:"username,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Role          UserRole   `bun:"user_role" json:"user_role,omitempty"`
	Status        UserStatus `bun:"status" json:"status,omitempty"`
	Avatar        string     `bun:"avatar" json:"avatar,omitempty"`
	LastLogin     *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value; an absent status means active.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// Snapshot strips the record down to the view that is safe to cache and
// return to callers. Missing roles serialize as "user".
func (u *User) Snapshot() Snapshot {
	role := u.Role
	if role == "" {
		role = RoleUser
	}

	return Snapshot{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      role,
		Username:  u.Username,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}
