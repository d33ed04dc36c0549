package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.PlatformRole
	PrimaryRole *enums.PrimaryRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID          `json:"user_id"`
	Role        enums.PlatformRole `json:"role"`
	PrimaryRole *enums.PrimaryRole `json:"primary_role,omitempty"`
	jwt.RegisteredClaims
}
