// internal/support/handlers.go

package support

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

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.Submit(r.Context(), userID, req.Message); err != nil {
		h.fail(w, r, "submit support request", err)
		return
	}
	supportEvents.WithLabelValues("submitted").Inc()
	utils.RespondWithMessage(w, http.StatusCreated, "Support request submitted successfully")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "list support requests", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reqs)
}

func (h *Handler) MarkHandled(w http.ResponseWriter, r *http.Request) {
	var req MarkHandledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.MarkHandled(r.Context(), req.ID); err != nil {
		h.fail(w, r, "mark support request", err)
		return
	}
	supportEvents.WithLabelValues("handled").Inc()
	utils.RespondWithMessage(w, http.StatusOK, "Support request marked as supported")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
