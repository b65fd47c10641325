// internal/support/routes.go

package support

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

// RegisterRoutes mounts the help desk under /help. Users file requests, admins read and close them.
func RegisterRoutes(router *mux.Router, handler *Handler, mw *auth.Middleware) {
	r := router.PathPrefix("/help").Subrouter()

	r.Handle("", mw.RequireUser(http.HandlerFunc(handler.Submit))).Methods("POST")
	r.Handle("", mw.RequireAdmin(http.HandlerFunc(handler.List))).Methods("GET")
	r.Handle("/checkedThaDataBtn", mw.RequireAdmin(http.HandlerFunc(handler.MarkHandled))).Methods("POST")
}
