package models

// User represents the authenticated account
type User struct {
	Username  string `json:"username" yaml:"username"`
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Email     string `json:"email" yaml:"email"`
}

// DisplayName prefers the first name and falls back to the username
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// LoginData represents the login form
type LoginData struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterData represents the registration form
type RegisterData struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// AuthRequest wraps credentials the way the auth endpoints expect them
type AuthRequest[T any] struct {
	User T `json:"user"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	AuthToken string `json:"auth_token"`
	User      *User  `json:"user"`
}

// SessionResponse is returned by the session check
type SessionResponse struct {
	User *User `json:"user"`
}
