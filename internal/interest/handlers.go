// internal/interest/handlers.go

package interest

import (
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

func (h *Handler) SendInterest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	receiverID, err := utils.PathID(r, "receiverId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	if err := h.service.SendInterest(r.Context(), userID, receiverID); err != nil {
		h.fail(w, r, "send interest", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Interest sent successfully")
}

func (h *Handler) AcceptInterest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	senderID, err := utils.PathID(r, "senderId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	accepted, err := h.service.AcceptOrToggle(r.Context(), userID, senderID)
	if err != nil {
		h.fail(w, r, "accept interest", err)
		return
	}

	resp := ToggleResponse{Message: "Interest accepted", Accepted: true}
	if !accepted {
		resp = ToggleResponse{Message: "Interest unaccepted", Accepted: false}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) RejectInterest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	senderID, err := utils.PathID(r, "senderId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	if err := h.service.Reject(r.Context(), userID, senderID); err != nil {
		h.fail(w, r, "reject interest", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Interest rejected")
}

func (h *Handler) ListInterests(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	list, err := h.service.ListInterests(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list interests", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
