package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// RegisterDTO is the transport shape for account registration.
type RegisterDTO struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Department           string `json:"department"`
	RoleLevel            string `json:"role_level"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Username == "" || d.Email == "" || d.Password == "" || d.FirstName == "" || d.LastName == "" {
		return ValidationError{Msg: "please fill in all required fields"}
	}
	if len(d.Username) > 80 {
		return ValidationError{Msg: "username must not exceed 80 characters"}
	}
	if len(d.Email) > 120 {
		return ValidationError{Msg: "email must not exceed 120 characters"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters long"}
	}
	return nil
}
