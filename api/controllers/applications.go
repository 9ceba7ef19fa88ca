package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/api/middleware"
	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/internal/applications"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

type applicationResponse struct {
	ID             uuid.UUID  `json:"id"`
	CandidateID    uuid.UUID  `json:"candidate_id"`
	JobID          uuid.UUID  `json:"job_id"`
	Stage          string     `json:"stage"`
	StageUpdatedAt time.Time  `json:"stage_updated_at"`
	RecruiterID    *uuid.UUID `json:"recruiter_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type applicationListResponse struct {
	Applications []applicationResponse `json:"applications"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

func toApplicationResponse(a models.Application) applicationResponse {
	return applicationResponse{
		ID:             a.ID,
		CandidateID:    a.CandidateID,
		JobID:          a.JobID,
		Stage:          string(a.Stage),
		StageUpdatedAt: a.StageUpdatedAt,
		RecruiterID:    a.RecruiterID,
		CreatedAt:      a.CreatedAt,
	}
}

// ApplicationList returns the applications visible to the caller as a cursor
// page.
func ApplicationList(repo *applications.Repository, logg *logger.Logger) http.HandlerFunc {
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

		resp := applicationListResponse{
			Applications: make([]applicationResponse, 0, len(rows)),
			NextCursor:   nextCursor,
		}
		for _, row := range rows {
			resp.Applications = append(resp.Applications, toApplicationResponse(row))
		}
		responses.WriteSuccess(w, resp)
	}
}
