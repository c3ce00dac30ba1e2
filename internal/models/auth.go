package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account and signs it in.
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=STUDENT INSTRUCTOR USER"`
}

// AuthResponse is the payload the backend returns from login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
