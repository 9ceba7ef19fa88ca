package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID             uuid.UUID
	ExternalIdentityID string
	Role               enums.PlatformRole
	JTI                string
}

// AccessTokenClaims represents the typed JWT issued to clients. The
// external identity id is the subject every access context resolution
// starts from.
type AccessTokenClaims struct {
	UserID             uuid.UUID          `json:"user_id"`
	ExternalIdentityID string             `json:"external_identity_id"`
	Role               enums.PlatformRole `json:"role"`
	jwt.RegisteredClaims
}
