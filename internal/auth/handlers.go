// internal/auth/handlers.go

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

// Handler holds dependencies for auth and settings endpoints
type Handler struct {
	service   *Service
	sessions  *Sessions
	mw        *Middleware
	maxUpload int64
}

func NewHandler(service *Service, sessions *Sessions, mw *Middleware, maxUpload int64) *Handler {
	return &Handler{service: service, sessions: sessions, mw: mw, maxUpload: maxUpload}
}

// RegisterRoutes registers all auth routes with the router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.Register).Methods("POST")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("POST")

	router.Handle("/auth/check", h.mw.RequireUser(http.HandlerFunc(h.Check))).Methods("GET")
	router.Handle("/user", h.mw.RequireUser(http.HandlerFunc(h.CurrentUser))).Methods("GET")

	settings := router.PathPrefix("/settings").Subrouter()
	settings.Use(h.mw.RequireUser)
	settings.HandleFunc("", h.GetSettings).Methods("GET")
	settings.HandleFunc("/notifications", h.UpdateNotificationSettings).Methods("POST")
	settings.HandleFunc("/change-password", h.ChangePassword).Methods("POST")
	settings.HandleFunc("/delete-account", h.DeleteAccount).Methods("DELETE")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	var avatar *storage.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
		upload, closeFile, err := storage.FormUpload(r, "DpImage")
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		defer closeFile()
		avatar = upload
		req = RegisterRequest{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Mobile:   r.FormValue("mobile"),
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req, avatar)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	if err := h.sessions.Start(r.Context(), w, userSession(user)); err != nil {
		h.fail(w, r, "register session", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. User created and session established.",
		"user":    toUserResponse(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	// a fresh session id on every login; an admin login on the same browser survives
	sess := userSession(user)
	if prev, err := h.sessions.Load(r); err == nil {
		sess.AdminID, sess.AdminEmail = prev.AdminID, prev.AdminEmail
		if err := h.sessions.Destroy(r.Context(), w, prev); err != nil {
			logger.Warn(r.Context(), "failed to drop previous session", zap.Error(err))
		}
	}

	if err := h.sessions.Start(r.Context(), w, sess); err != nil {
		h.fail(w, r, "login session", err)
		return
	}

	logger.Info(r.Context(), "user logged in", zap.Int64("user_id", user.ID))
	utils.RespondWithMessage(w, http.StatusOK, "Login successful")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Load(r)
	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		logger.Error(r.Context(), "logout failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Logout successful")
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": UserResponse{
			ID:      sess.UserID,
			Name:    sess.Name,
			Email:   sess.Email,
			Mobile:  sess.Mobile,
			DpImage: sess.DpImage,
		},
	})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "current user", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	settings, err := h.service.NotificationSettings(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "get settings", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateNotificationSettings(r.Context(), userID, req); err != nil {
		h.fail(w, r, "update notification settings", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Notification settings updated!")
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req); err != nil {
		h.fail(w, r, "change password", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Password updated successfully!")
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())

	if err := h.service.DeleteAccount(r.Context(), sess.UserID); err != nil {
		h.fail(w, r, "delete account", err)
		return
	}

	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		logger.Warn(r.Context(), "failed to drop session of deleted account", zap.Error(err))
	}
	utils.RespondWithMessage(w, http.StatusOK, "Account deleted successfully.")
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}

func userSession(u *users.User) *Session {
	return &Session{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Mobile:  u.Mobile,
		DpImage: u.DpImage,
	}
}
