package auth

import (
	"github.com/b4platform/b4-backend/internal/users"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         *users.UserDTO       `json:"user"`
	Roles        []enums.PlatformRole `json:"roles"`
	PrimaryRole  *enums.PrimaryRole   `json:"primary_role,omitempty"`
}

// AdminLoginResponse mirrors LoginResponse for the admin console.
type AdminLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
