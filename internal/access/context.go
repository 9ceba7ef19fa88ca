package access

import (
	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
)

// Context is the per-request scoping object every authorization decision
// reads from. It is computed fresh on each request and never cached.
type Context struct {
	IdentityUserID  uuid.UUID
	CandidateID     *uuid.UUID
	RecruiterID     *uuid.UUID
	OrganizationIDs []uuid.UUID
	Roles           []enums.PlatformRole
	IsPlatformAdmin bool
}

// HasRole reports whether the caller holds the given role anywhere.
func (c Context) HasRole(role enums.PlatformRole) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// InOrganization reports whether the caller belongs to the organization.
func (c Context) InOrganization(orgID uuid.UUID) bool {
	for _, id := range c.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// CanViewCandidate reports whether the caller may read the candidate record.
// Mirrors the row filter applied by ScopeCandidates.
func (c Context) CanViewCandidate(candidate *models.Candidate) bool {
	if candidate == nil {
		return false
	}
	if c.IsPlatformAdmin {
		return true
	}
	if c.RecruiterID != nil && candidate.OwnerRecruiterID != nil && *c.RecruiterID == *candidate.OwnerRecruiterID {
		return true
	}
	if candidate.OrganizationID != nil && c.InOrganization(*candidate.OrganizationID) {
		return true
	}
	if c.CandidateID != nil && *c.CandidateID == candidate.ID {
		return true
	}
	return false
}
