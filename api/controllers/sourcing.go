package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirelane/talentsync-backend/api/middleware"
	"github.com/hirelane/talentsync-backend/api/responses"
	"github.com/hirelane/talentsync-backend/api/validators"
	"github.com/hirelane/talentsync-backend/internal/candidates"
	"github.com/hirelane/talentsync-backend/internal/sourcing"
	"github.com/hirelane/talentsync-backend/pkg/db/models"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
	"github.com/hirelane/talentsync-backend/pkg/pagination"
)

type claimAssignmentPayload struct {
	CandidateID          string           `json:"candidate_id" validate:"required,uuid"`
	SourcerType          string           `json:"sourcer_type" validate:"required"`
	ProtectionWindowDays *int             `json:"protection_window_days,omitempty" validate:"omitempty,gt=0"`
	PlacementFeeRate     *decimal.Decimal `json:"placement_fee_rate,omitempty"`
	Notes                string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type updateAssignmentPayload struct {
	ProtectionWindowDays *int             `json:"protection_window_days,omitempty" validate:"omitempty,gt=0"`
	PlacementFeeRate     *decimal.Decimal `json:"placement_fee_rate,omitempty"`
	Notes                *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type releaseAssignmentPayload struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type assignmentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	CandidateID          uuid.UUID       `json:"candidate_id"`
	SourcerIdentityID    uuid.UUID       `json:"sourcer_identity_id"`
	SourcerType          string          `json:"sourcer_type"`
	SourcedAt            time.Time       `json:"sourced_at"`
	ProtectionWindowDays int             `json:"protection_window_days"`
	ProtectionExpiresAt  time.Time       `json:"protection_expires_at"`
	PlacementFeeRate     decimal.Decimal `json:"placement_fee_rate"`
	Notes                *string         `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type assignmentListResponse struct {
	Assignments []assignmentResponse `json:"assignments"`
	NextCursor  string               `json:"next_cursor,omitempty"`
}

func toAssignmentResponse(a models.SourcerAssignment) assignmentResponse {
	return assignmentResponse{
		ID:                   a.ID,
		CandidateID:          a.CandidateID,
		SourcerIdentityID:    a.SourcerIdentityID,
		SourcerType:          string(a.SourcerType),
		SourcedAt:            a.SourcedAt,
		ProtectionWindowDays: a.ProtectionWindowDays,
		ProtectionExpiresAt:  a.ProtectionExpiresAt,
		PlacementFeeRate:     a.PlacementFeeRate,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt,
	}
}

// AssignmentClaim claims sourcing credit for a candidate on behalf of the
// caller. First writer wins: when the candidate is already claimed by another
// sourcer the claim is dropped and 409 is returned.
func AssignmentClaim(svc *sourcing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}

		var payload claimAssignmentPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		candidateID, err := uuid.Parse(payload.CandidateID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid candidate id"))
			return
		}

		req := payloads.SourcerAssignmentRequestedEvent{
			CandidateID:          candidateID,
			SourcerIdentityID:    accessCtx.IdentityUserID,
			SourcerType:          enums.SourcerType(payload.SourcerType),
			SourcedAt:            time.Now().UTC(),
			ProtectionWindowDays: payload.ProtectionWindowDays,
			PlacementFeeRate:     payload.PlacementFeeRate,
			Notes:                validators.SanitizeString(payload.Notes, 2000),
		}

		if err := svc.RequestAssignment(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// A dropped conflicting claim also returns nil, so read back the
		// winner to tell the caller who holds the candidate.
		assignment, err := svc.GetByCandidate(ctx, candidateID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if assignment.SourcerIdentityID != accessCtx.IdentityUserID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "candidate already claimed by another sourcer"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toAssignmentResponse(*assignment))
	}
}

// AssignmentList returns the caller's assignments as a cursor page. Platform
// admins may inspect another sourcer via the sourcer_id query parameter.
func AssignmentList(svc *sourcing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}

		sourcerID := accessCtx.IdentityUserID
		if raw := strings.TrimSpace(r.URL.Query().Get("sourcer_id")); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sourcer id"))
				return
			}
			if parsed != accessCtx.IdentityUserID && !accessCtx.IsPlatformAdmin {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot list another sourcer's assignments"))
				return
			}
			sourcerID = parsed
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, nextCursor, err := svc.ListBySourcer(ctx, sourcerID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := assignmentListResponse{
			Assignments: make([]assignmentResponse, 0, len(rows)),
			NextCursor:  nextCursor,
		}
		for _, row := range rows {
			resp.Assignments = append(resp.Assignments, toAssignmentResponse(row))
		}
		responses.WriteSuccess(w, resp)
	}
}

// AssignmentUpdate changes negotiable terms on an existing assignment. Only
// the holding sourcer or a platform admin may update it.
func AssignmentUpdate(svc *sourcing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}

		assignmentID, err := uuid.Parse(chi.URLParam(r, "assignmentId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignment id"))
			return
		}

		var payload updateAssignmentPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := authorizeAssignmentActor(ctx, svc, accessCtx.IdentityUserID, accessCtx.IsPlatformAdmin, assignmentID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.Update(ctx, assignmentID, sourcing.UpdateParams{
			ProtectionWindowDays: payload.ProtectionWindowDays,
			PlacementFeeRate:     payload.PlacementFeeRate,
			Notes:                payload.Notes,
			Actor:                actorFromAccess(accessCtx.IdentityUserID, accessCtx.RecruiterID),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toAssignmentResponse(*updated))
	}
}

// AssignmentRelease removes a claim, freeing the candidate for other
// sourcers. Sourcing credit holds for the life of the record, so only a
// platform admin may delete one.
func AssignmentRelease(svc *sourcing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accessCtx := middleware.AccessFromContext(ctx)
		if accessCtx == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access context missing"))
			return
		}
		if !accessCtx.IsPlatformAdmin {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "platform admin required"))
			return
		}

		assignmentID, err := uuid.Parse(chi.URLParam(r, "assignmentId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignment id"))
			return
		}

		reason := strings.TrimSpace(r.URL.Query().Get("reason"))
		if reason == "" {
			reason = "released by platform admin"
		}

		if err := svc.Release(ctx, assignmentID, reason, actorFromAccess(accessCtx.IdentityUserID, accessCtx.RecruiterID)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

// CandidateAssignment returns the active assignment protecting a candidate.
// The caller's candidate visibility rules apply; an out-of-scope candidate
// reads as not found, never leaking who sourced them or at what rate.
func CandidateAssignment(svc *sourcing.Service, candidatesRepo *candidates.Repository, logg *logger.Logger) http.HandlerFunc {
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

		candidate, err := candidatesRepo.FindByID(ctx, candidateID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if candidate == nil || !accessCtx.CanViewCandidate(candidate) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found"))
			return
		}

		assignment, err := svc.GetByCandidate(ctx, candidateID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toAssignmentResponse(*assignment))
	}
}

func authorizeAssignmentActor(ctx context.Context, svc *sourcing.Service, callerID uuid.UUID, isAdmin bool, assignmentID uuid.UUID) error {
	if isAdmin {
		return nil
	}
	assignment, err := svc.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.SourcerIdentityID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "assignment belongs to another sourcer")
	}
	return nil
}

func actorFromAccess(userID uuid.UUID, recruiterID *uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:      userID,
		RecruiterID: recruiterID,
	}
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = value
	}
	return params, nil
}
