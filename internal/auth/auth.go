package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role is the closed set of account roles. Keeping this a real type (not
// raw strings scattered through handlers) means a typo'd role can never
// silently grant or deny access.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanManageIncidents reports whether the role may update any incident
// regardless of who reported it.
func (r Role) CanManageIncidents() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the authenticated identity attached to a request context.
// It is a view for authorization decisions, not the full account record.
type User struct {
	ID                   int64  `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Role                 Role   `json:"role"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// CanUpdateIncident reports whether this user may change the given
// incident: managers and admins always, everyone else only their own
// reports.
func (u *User) CanUpdateIncident(reporterID int64) bool {
	return u.Role.CanManageIncidents() || u.ID == reporterID
}

// Session is a server-side login session. The random token is what gets
// wrapped in the signed cookie; the row is the source of truth so logout
// revokes immediately.
type Session struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
)

type ctxKey string

const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}
