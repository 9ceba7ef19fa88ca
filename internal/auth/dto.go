package auth

import (
	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the caller-facing slice of the authenticated user.
type UserSummary struct {
	ID        uuid.UUID          `json:"id"`
	Email     string             `json:"email"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Role      enums.PlatformRole `json:"role"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresIn   int         `json:"expiresIn"`
	User        UserSummary `json:"user"`
}
