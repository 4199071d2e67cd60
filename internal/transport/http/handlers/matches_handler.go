package handlers

import (
	"errors"
	"net/http"

	matchersvc "github.com/AuvroIslam/Mio-sub001/internal/services/matcher"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/dto"
	httperrors "github.com/AuvroIslam/Mio-sub001/internal/transport/http/errors"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/identity"
)

type MatchesHandler struct {
	service *matchersvc.Service
}

func NewMatchesHandler(service *matchersvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHER_SERVICE_UNAVAILABLE", "matcher service is unavailable")
		return
	}

	matches, err := h.service.Matches(r.Context(), userID)
	if err != nil {
		if errors.Is(err, matchersvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	items := make([]dto.MatchItem, 0, len(matches))
	for _, match := range matches {
		items = append(items, dto.MatchItem{
			UserID:        match.OtherUserID,
			MatchStrength: match.MatchStrength,
			DisplayName:   match.DisplayName,
			DisplayPhoto:  match.DisplayPhoto,
			MatchedAt:     match.MatchedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Matches: items})
}

func (h *MatchesHandler) Find(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHER_SERVICE_UNAVAILABLE", "matcher service is unavailable")
		return
	}

	result, err := h.service.RunPass(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, matchersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid find matches request")
		case errors.Is(err, matchersvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile does not exist")
		default:
			if ca, ok := matchersvc.IsCooldownActive(err); ok {
				httperrors.WriteRateLimited(w, httperrors.RateLimitError{
					Code:          "COOLDOWN_ACTIVE",
					Message:       "matching cooldown is active, try again later",
					RetryAfterSec: int64(ca.Remaining.Seconds()),
				})
				return
			}
			if tp, ok := matchersvc.IsTooManyPasses(err); ok {
				httperrors.WriteRateLimited(w, httperrors.RateLimitError{
					Code:          "TOO_MANY_PASSES",
					Message:       "too many matching passes, slow down",
					RetryAfterSec: tp.RetryAfterSec,
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to run matching pass")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FindMatchesResponse{
		OK:                   true,
		CandidatesConsidered: result.CandidatesConsidered,
		MatchesCreated:       result.Created,
		MatchesUpdated:       result.Updated,
		ClippedByQuota:       result.ClippedByQuota,
	})
}
