// internal/block/handlers.go

package block

import (
	"encoding/json"
	"net/http"

	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) BlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	blocked, err := h.service.BlockedUsers(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list blocked users", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, blocked)
}

func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	targetID, err := utils.PathID(r, "userId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	if err := h.service.Block(r.Context(), userID, targetID); err != nil {
		h.fail(w, r, "block user", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "User blocked successfully")
}

func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	targetID, err := utils.PathID(r, "userId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	if err := h.service.Unblock(r.Context(), userID, targetID); err != nil {
		h.fail(w, r, "unblock user", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "User unblocked successfully")
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	targetID, err := utils.PathID(r, "userId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.Report(r.Context(), userID, targetID, req.Message); err != nil {
		h.fail(w, r, "report user", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Report submitted successfully")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
