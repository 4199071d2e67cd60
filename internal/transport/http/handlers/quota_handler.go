package handlers

import (
	"net/http"

	cooldownsvc "github.com/AuvroIslam/Mio-sub001/internal/services/cooldown"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/dto"
	httperrors "github.com/AuvroIslam/Mio-sub001/internal/transport/http/errors"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/identity"
)

type QuotaHandler struct {
	gate *cooldownsvc.Service
}

func NewQuotaHandler(gate *cooldownsvc.Service) *QuotaHandler {
	return &QuotaHandler{gate: gate}
}

// Get reads the caller's gate state. Reading through CheckAndAdvance means an
// elapsed cooldown is already reset in the returned snapshot.
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.gate == nil {
		writeInternal(w, "COOLDOWN_SERVICE_UNAVAILABLE", "cooldown service is unavailable")
		return
	}

	status, err := h.gate.CheckAndAdvance(r.Context(), userID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load quota")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		AvailableForMatching: status.AvailableForMatching,
		MatchCount:           status.State.MatchCount,
		MatchThreshold:       status.State.MatchThreshold,
		RemainingQuota:       status.State.RemainingQuota(),
		IsPremium:            status.State.IsPremium,
		CooldownRemainingSec: int64(status.Remaining.Seconds()),
	})
}
