package access

import (
	"gorm.io/gorm"
)

// ScopeCandidates narrows a candidates query to the rows the caller may see.
// Platform admins are unrestricted; recruiters see candidates they own;
// organization members see candidates in their organizations; candidates see
// only themselves. An empty scope matches nothing.
func ScopeCandidates(query *gorm.DB, accessCtx Context) *gorm.DB {
	if accessCtx.IsPlatformAdmin {
		return query
	}

	conditions := query.Session(&gorm.Session{NewDB: true})
	matched := false
	if accessCtx.RecruiterID != nil {
		conditions = conditions.Where("candidates.owner_recruiter_id = ?", *accessCtx.RecruiterID)
		matched = true
	}
	if len(accessCtx.OrganizationIDs) > 0 {
		conditions = conditions.Or("candidates.organization_id IN ?", accessCtx.OrganizationIDs)
		matched = true
	}
	if accessCtx.CandidateID != nil {
		conditions = conditions.Or("candidates.id = ?", *accessCtx.CandidateID)
		matched = true
	}
	if !matched {
		return query.Where("1 = 0")
	}
	return query.Where(conditions)
}

// ScopeApplications narrows an applications query the same way, joining
// through candidates for ownership and organization checks.
func ScopeApplications(query *gorm.DB, accessCtx Context) *gorm.DB {
	if accessCtx.IsPlatformAdmin {
		return query
	}

	joined := query.Joins("JOIN candidates ON candidates.id = applications.candidate_id")

	conditions := query.Session(&gorm.Session{NewDB: true})
	matched := false
	if accessCtx.RecruiterID != nil {
		conditions = conditions.Where("candidates.owner_recruiter_id = ?", *accessCtx.RecruiterID)
		matched = true
	}
	if len(accessCtx.OrganizationIDs) > 0 {
		conditions = conditions.Or("candidates.organization_id IN ?", accessCtx.OrganizationIDs)
		matched = true
	}
	if accessCtx.CandidateID != nil {
		conditions = conditions.Or("applications.candidate_id = ?", *accessCtx.CandidateID)
		matched = true
	}
	if !matched {
		return query.Where("1 = 0")
	}
	return joined.Where(conditions)
}
