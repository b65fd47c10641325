// internal/common/utils/request.go

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
)

// PathID reads a positive integer id from the named route variable
func PathID(r *http.Request, name string) (int64, error) {
	return ParseID(mux.Vars(r)[name], name)
}

// ParseID parses a positive integer id, reporting a 400 on malformed input
func ParseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.InvalidOperation("Invalid " + name + ".")
	}
	return id, nil
}
