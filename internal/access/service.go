package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
)

type repository interface {
	FindUserByExternalIdentity(ctx context.Context, externalIdentityID string) (*models.User, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.OrgMembership, error)
	FindRecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.Recruiter, error)
	FindCandidateByUserID(ctx context.Context, userID uuid.UUID) (*models.Candidate, error)
}

// Service resolves external identities into request-scoped access contexts.
type Service struct {
	repo repository
}

// NewService builds the resolver.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("access repository required")
	}
	return &Service{repo: repo}, nil
}

// Resolve maps an opaque external identity onto the internal user and the
// scopes attached to it. Returns NotFound when no mapping exists so callers
// treat the request as unauthenticated instead of failing hard.
func (s *Service) Resolve(ctx context.Context, externalIdentityID string) (*Context, error) {
	if strings.TrimSpace(externalIdentityID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external identity is required")
	}

	user, err := s.repo.FindUserByExternalIdentity(ctx, externalIdentityID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not recognized")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is deactivated")
	}

	memberships, err := s.repo.ListMemberships(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessCtx := &Context{
		IdentityUserID:  user.ID,
		Roles:           []enums.PlatformRole{user.Role},
		IsPlatformAdmin: user.Role == enums.RolePlatformAdmin,
	}
	for _, membership := range memberships {
		accessCtx.OrganizationIDs = append(accessCtx.OrganizationIDs, membership.OrganizationID)
		if !accessCtx.HasRole(membership.Role) {
			accessCtx.Roles = append(accessCtx.Roles, membership.Role)
		}
	}

	recruiter, err := s.repo.FindRecruiterByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if recruiter != nil {
		accessCtx.RecruiterID = &recruiter.ID
	}

	candidate, err := s.repo.FindCandidateByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if candidate != nil {
		accessCtx.CandidateID = &candidate.ID
	}

	return accessCtx, nil
}
