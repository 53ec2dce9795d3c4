package user

import (
	"errors"
	"strings"
	"time"

	"github.com/incidentops/incident-management/internal/auth"
	userDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/user"
)

type User struct {
	ID                   int64     `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Department           string    `json:"department,omitempty"`
	RoleLevel            string    `json:"role_level,omitempty"`
	Role                 auth.Role `json:"role"`
	IsActive             bool      `json:"is_active"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

var ErrNotFound = errors.New("user not found")

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Department:           u.Department,
		RoleLevel:            u.RoleLevel,
		Role:                 string(u.Role),
		IsActive:             u.IsActive,
		NotificationsEnabled: u.NotificationsEnabled,
		CreatedAt:            u.CreatedAt,
	}
}

func FromDataModel(row *userDatamodel.User) *User {
	role, err := auth.ParseRole(row.Role)
	if err != nil {
		role = auth.RoleUser
	}
	return &User{
		ID:                   row.ID,
		Username:             row.Username,
		Email:                row.Email,
		PasswordHash:         row.PasswordHash,
		FirstName:            row.FirstName,
		LastName:             row.LastName,
		Department:           row.Department,
		RoleLevel:            row.RoleLevel,
		Role:                 role,
		IsActive:             row.IsActive,
		NotificationsEnabled: row.NotificationsEnabled,
		CreatedAt:            row.CreatedAt,
	}
}
