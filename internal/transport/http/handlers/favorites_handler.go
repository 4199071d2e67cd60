package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	analyticsvc "github.com/AuvroIslam/Mio-sub001/internal/services/analytics"
	interestssvc "github.com/AuvroIslam/Mio-sub001/internal/services/interests"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/dto"
	httperrors "github.com/AuvroIslam/Mio-sub001/internal/transport/http/errors"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/identity"
)

type FavoritesHandler struct {
	service   *interestssvc.Service
	analytics *analyticsvc.Service
}

func NewFavoritesHandler(service *interestssvc.Service, analytics *analyticsvc.Service) *FavoritesHandler {
	return &FavoritesHandler{service: service, analytics: analytics}
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}

	var req dto.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.AddFavorite(r.Context(), userID, req.ItemID); err != nil {
		if errors.Is(err, interestssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "item_id is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to add favorite")
		return
	}

	h.analytics.Record(r.Context(), userID, analyticsvc.EventFavoriteSet, map[string]any{
		"item_id": req.ItemID,
		"added":   true,
	})
	httperrors.Write(w, http.StatusOK, dto.FavoriteResponse{OK: true})
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if err := h.service.RemoveFavorite(r.Context(), userID, itemID); err != nil {
		if errors.Is(err, interestssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "item_id is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to remove favorite")
		return
	}

	h.analytics.Record(r.Context(), userID, analyticsvc.EventFavoriteSet, map[string]any{
		"item_id": itemID,
		"added":   false,
	})
	httperrors.Write(w, http.StatusOK, dto.FavoriteResponse{OK: true})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
