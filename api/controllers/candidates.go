package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/api/middleware"
	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/internal/candidates"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

type candidateResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Headline            *string    `json:"headline,omitempty"`
	Location            *string    `json:"location,omitempty"`
	SkillsCSV           *string    `json:"skills_csv,omitempty"`
	YearsExperience     *int       `json:"years_experience,omitempty"`
	SourcedByIdentityID *uuid.UUID `json:"sourced_by_identity_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type candidateListResponse struct {
	Candidates []candidateResponse `json:"candidates"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func toCandidateResponse(c models.Candidate) candidateResponse {
	return candidateResponse{
		ID:                  c.ID,
		Email:               c.Email,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Headline:            c.Headline,
		Location:            c.Location,
		SkillsCSV:           c.SkillsCSV,
		YearsExperience:     c.YearsExperience,
		SourcedByIdentityID: c.SourcedByIdentityID,
		CreatedAt:           c.CreatedAt,
	}
}

// CandidateList returns the candidates visible to the caller as a cursor page.
func CandidateList(repo *candidates.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, nextCursor, err := repo.ListScoped(ctx, *accessCtx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := candidateListResponse{
			Candidates: make([]candidateResponse, 0, len(rows)),
			NextCursor: nextCursor,
		}
		for _, row := range rows {
			resp.Candidates = append(resp.Candidates, toCandidateResponse(row))
		}
		responses.WriteSuccess(w, resp)
	}
}

// CandidateDetail returns one candidate, applying the caller's visibility
// rules. Out-of-scope candidates read as not found.
func CandidateDetail(repo *candidates.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}

		candidateID, err := uuid.Parse(chi.URLParam(r, "candidateId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid candidate id"))
			return
		}

		candidate, err := repo.FindByID(ctx, candidateID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if candidate == nil || !accessCtx.CanViewCandidate(candidate) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found"))
			return
		}

		responses.WriteSuccess(w, toCandidateResponse(*candidate))
	}
}
