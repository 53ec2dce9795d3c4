package user

import "errors"

// UpdateProfileDTO carries the mutable profile fields.
type UpdateProfileDTO struct {
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	Department           *string `json:"department,omitempty"`
	RoleLevel            *string `json:"role_level,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

func (d UpdateProfileDTO) Validate() error {
	if d.FirstName != nil && (*d.FirstName == "" || len(*d.FirstName) > 50) {
		return errors.New("first_name must be between 1 and 50 characters")
	}
	if d.LastName != nil && (*d.LastName == "" || len(*d.LastName) > 50) {
		return errors.New("last_name must be between 1 and 50 characters")
	}
	if d.Department != nil && len(*d.Department) > 50 {
		return errors.New("department must not exceed 50 characters")
	}
	if d.RoleLevel != nil && len(*d.RoleLevel) > 30 {
		return errors.New("role_level must not exceed 30 characters")
	}
	return nil
}

// ChangePasswordDTO carries a password change request.
type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (d ChangePasswordDTO) Validate() error {
	if d.CurrentPassword == "" {
		return errors.New("current_password is required")
	}
	if len(d.NewPassword) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}
