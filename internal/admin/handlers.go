// internal/admin/handlers.go

package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"go.uber.org/zap"
)

type Handler struct {
	service  *Service
	sessions *auth.Sessions
	mw       *auth.Middleware
}

func NewHandler(service *Service, sessions *auth.Sessions, mw *auth.Middleware) *Handler {
	return &Handler{service: service, sessions: sessions, mw: mw}
}

// RegisterRoutes mounts the admin console under /admin
func (h *Handler) RegisterRoutes(router *mux.Router) {
	r := router.PathPrefix("/admin").Subrouter()
	r.HandleFunc("/login", h.Login).Methods("POST")

	protected := r.NewRoute().Subrouter()
	protected.Use(h.mw.RequireAdmin)
	protected.HandleFunc("/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/home", h.Home).Methods("GET")
	protected.HandleFunc("/reports", h.Reports).Methods("GET")
	protected.HandleFunc("/blocks", h.Blocks).Methods("GET")
	protected.HandleFunc("/history", h.History).Methods("GET")
	protected.HandleFunc("/remove/{userId}", h.RemoveUser).Methods("POST")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "admin login", err)
		return
	}

	// a user login on the same browser survives; the session id is always fresh
	sess := &auth.Session{AdminID: a.ID, AdminEmail: a.Email}
	if prev, err := h.sessions.Load(r); err == nil {
		prev.AdminID, prev.AdminEmail = a.ID, a.Email
		sess = prev
		if err := h.sessions.Destroy(r.Context(), w, prev); err != nil {
			logger.Warn(r.Context(), "failed to drop previous session", zap.Error(err))
		}
	}

	if err := h.sessions.Start(r.Context(), w, sess); err != nil {
		h.fail(w, r, "admin login session", err)
		return
	}

	adminActions.WithLabelValues("login").Inc()
	logger.Info(r.Context(), "admin logged in", zap.Int64("admin_id", a.ID))
	utils.RespondWithMessage(w, http.StatusOK, "Login successful")
}

// Logout ends the admin login. A user login sharing the session stays signed in.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var err error
	if sess.UserID > 0 {
		sess.AdminID, sess.AdminEmail = 0, ""
		err = h.sessions.Save(r.Context(), sess)
	} else {
		err = h.sessions.Destroy(r.Context(), w, sess)
	}
	if err != nil {
		logger.Error(r.Context(), "admin logout failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Logout successful")
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, "admin dashboard", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dash)
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Reports(r.Context())
	if err != nil {
		h.fail(w, r, "admin reports", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) Blocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.Blocks(r.Context())
	if err != nil {
		h.fail(w, r, "admin blocks", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, blocks)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		h.fail(w, r, "admin history", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, history)
}

func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	userID, err := utils.PathID(r, "userId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	// the reason is optional and so is the body
	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.RemoveUser(r.Context(), sess.AdminID, userID, req.Reason); err != nil {
		h.fail(w, r, "remove user", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "User account removed successfully")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
