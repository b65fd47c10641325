// internal/interest/models.go

package interest

import "github.com/imadgeboyega/matchmaking-backend/internal/users"

// List is what a user sees on their interests page
type List struct {
	Pending  []users.Summary `json:"pending"`
	Accepted []users.Summary `json:"accepted"`
	DpImage  string          `json:"DpImage"`
}

type ToggleResponse struct {
	Message  string `json:"message"`
	Accepted bool   `json:"accepted"`
}
