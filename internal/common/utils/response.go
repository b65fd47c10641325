// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
)

// MessageBody is the {"message": ...} shape most mutations return
type MessageBody struct {
	Message string `json:"message"`
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithMessage sends {"message": message}
func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, MessageBody{Message: message})
}

// RespondWithAppError maps a service error to its status and client-facing message
func RespondWithAppError(w http.ResponseWriter, err error) {
	RespondWithError(w, errs.Status(err), errs.Message(err))
}

// IsServerError reports whether err maps to a 5xx and should be logged
func IsServerError(err error) bool {
	return errs.Status(err) >= http.StatusInternalServerError
}
