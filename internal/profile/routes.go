// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

// RegisterRoutes mounts the profile form under /information and its
// /update-information alias, plus the /home discovery listing
func RegisterRoutes(router *mux.Router, handler *Handler, mw *auth.Middleware) {
	for _, prefix := range []string{"/information", "/update-information"} {
		r := router.PathPrefix(prefix).Subrouter()
		r.Use(mw.RequireUser)
		r.HandleFunc("", handler.GetInformation).Methods("GET")
		r.HandleFunc("", handler.SaveInformation).Methods("POST")
		r.HandleFunc("", handler.UpdateInformation).Methods("PUT")
	}

	home := router.PathPrefix("/home").Subrouter()
	home.Use(mw.RequireUser)
	home.HandleFunc("", handler.Home).Methods("GET")
}
