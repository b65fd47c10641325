// internal/messaging/routes.go

package messaging

import (
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

// RegisterRoutes mounts chat and call signalling endpoints under /message
func RegisterRoutes(router *mux.Router, handler *Handler, mw *auth.Middleware) {
	r := router.PathPrefix("/message").Subrouter()
	r.Use(mw.RequireUser)

	r.HandleFunc("", handler.ListChatPartners).Methods("GET")
	r.HandleFunc("", handler.SendText).Methods("POST")
	r.HandleFunc("/messageImage", handler.SendImage).Methods("POST")
	r.HandleFunc("/messageVoice", handler.SendVoice).Methods("POST")
	r.HandleFunc("/conversation/{partnerId}", handler.GetConversation).Methods("GET")
	r.HandleFunc("/poll/{partnerId}", handler.PollMessages).Methods("GET")

	// Call signalling
	r.HandleFunc("/call/initiate", handler.InitiateCall).Methods("POST")
	r.HandleFunc("/call/answer", handler.AnswerCall).Methods("POST")
	r.HandleFunc("/call/answer", handler.PollAnswer).Methods("GET")
	r.HandleFunc("/call/reject", handler.RejectCall).Methods("POST")
	r.HandleFunc("/call/ice-candidate", handler.ExchangeIceCandidate).Methods("POST")
	r.HandleFunc("/call/ice-candidate", handler.PollIceCandidate).Methods("GET")
	r.HandleFunc("/call/end", handler.EndCall).Methods("POST")
}
