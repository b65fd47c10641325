// internal/block/routes.go

package block

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

// RegisterRoutes mounts the block and report endpoints under /block, plus the
// top-level /blockedUsers listing
func RegisterRoutes(router *mux.Router, handler *Handler, mw *auth.Middleware) {
	router.Handle("/blockedUsers", mw.RequireUser(http.HandlerFunc(handler.BlockedUsers))).Methods("GET")

	r := router.PathPrefix("/block").Subrouter()
	r.Use(mw.RequireUser)

	r.HandleFunc("/blockedUsers", handler.BlockedUsers).Methods("GET")
	r.HandleFunc("/block/{userId}", handler.Block).Methods("POST")
	r.HandleFunc("/unblock/{userId}", handler.Unblock).Methods("POST")
	r.HandleFunc("/report/{userId}", handler.Report).Methods("POST")
}
