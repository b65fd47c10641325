// internal/notification/handlers.go

package notification

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"go.uber.org/zap"
)

type successBody struct {
	Success bool `json:"success"`
}

type Handler struct {
	service  *Service
	sessions *auth.Sessions
}

func NewHandler(service *Service, sessions *auth.Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// RegisterRoutes mounts the notification badge endpoints under /notifications
func (h *Handler) RegisterRoutes(router *mux.Router, mw *auth.Middleware) {
	r := router.PathPrefix("/notifications").Subrouter()
	r.Use(mw.RequireUser)

	r.HandleFunc("", h.Counts).Methods("GET")
	r.HandleFunc("/mark-messages-viewed", h.MarkMessagesViewed).Methods("POST")
	r.HandleFunc("/mark-interests-viewed", h.MarkInterestsViewed).Methods("POST")
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	counts, err := h.service.Counts(r.Context(), sess.UserID, sess.SeenInterests)
	if err != nil {
		h.fail(w, r, "fetch notifications", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, counts)
}

func (h *Handler) MarkMessagesViewed(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	if err := h.service.MarkMessagesViewed(r.Context(), userID); err != nil {
		h.fail(w, r, "mark messages viewed", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, successBody{Success: true})
}

// MarkInterestsViewed remembers the current received interests in the session
func (h *Handler) MarkInterestsViewed(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	received, err := h.service.ReceivedInterests(r.Context(), sess.UserID)
	if err != nil {
		h.fail(w, r, "mark interests viewed", err)
		return
	}

	sess.SeenInterests = received
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.fail(w, r, "save seen interests", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, successBody{Success: true})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
