// internal/interest/routes.go

package interest

import (
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

// RegisterRoutes mounts the interest endpoints under /interest
func RegisterRoutes(router *mux.Router, handler *Handler, mw *auth.Middleware) {
	r := router.PathPrefix("/interest").Subrouter()
	r.Use(mw.RequireUser)

	r.HandleFunc("", handler.ListInterests).Methods("GET")
	r.HandleFunc("/send/{receiverId}", handler.SendInterest).Methods("POST")
	r.HandleFunc("/accept/{senderId}", handler.AcceptInterest).Methods("POST")
	r.HandleFunc("/reject/{senderId}", handler.RejectInterest).Methods("POST")
}
