// internal/profile/handlers.go

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

type Handler struct {
	service   *Service
	maxUpload int64
}

func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{service: service, maxUpload: maxUpload}
}

func (h *Handler) GetInformation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	info, err := h.service.Information(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "get information", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, info)
}

func (h *Handler) SaveInformation(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.SaveInformation, http.StatusCreated, "Information saved successfully")
}

func (h *Handler) UpdateInformation(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.service.UpdateInformation, http.StatusOK, "Information updated successfully")
}

type writeFunc func(ctx context.Context, userID int64, req InformationRequest, image *storage.Upload) (*users.User, error)

func (h *Handler) write(w http.ResponseWriter, r *http.Request, fn writeFunc, status int, message string) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req InformationRequest
	var image *storage.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
		upload, closeFile, err := storage.FormUpload(r, "profileImage")
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		defer closeFile()
		image = upload
		req = formRequest(r)
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := fn(r.Context(), userID, req, image)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  verr.Error(),
				"errors": verr.Errors,
			})
			return
		}
		h.fail(w, r, "write information", err)
		return
	}

	utils.RespondWithJSON(w, status, map[string]interface{}{
		"message": message,
		"user":    user,
	})
}

func formRequest(r *http.Request) InformationRequest {
	return InformationRequest{
		Country:             r.FormValue("country"),
		State:               r.FormValue("state"),
		District:            r.FormValue("district"),
		Religion:            r.FormValue("religion"),
		Caste:               r.FormValue("caste"),
		CurrentPlace:        r.FormValue("currentPlace"),
		Gender:              r.FormValue("gender"),
		Orientation:         r.FormValue("orientation"),
		MaritalStatus:       r.FormValue("maritalStatus"),
		DateOfBirth:         r.FormValue("dob"),
		Height:              json.Number(r.FormValue("height")),
		Weight:              json.Number(r.FormValue("weight")),
		Education:           r.FormValue("education"),
		Profession:          r.FormValue("profession"),
		Income:              r.FormValue("income"),
		Languages:           r.FormValue("languages"),
		Habits:              r.FormValue("habits"),
		Diet:                r.FormValue("diet"),
		PartnerExpectations: r.FormValue("partnerExpectations"),
		FamilyDetails:       r.FormValue("familyDetails"),
		Horoscope:           r.FormValue("horoscope"),
		Address:             r.FormValue("Address"),
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	values := r.URL.Query()

	q := DiscoverQuery{
		Name:          values.Get("name"),
		Country:       values.Get("country"),
		State:         values.Get("state"),
		MaritalStatus: values.Get("maritalStatus"),
		CurrentPlace:  values.Get("currentPlace"),
		Profession:    values.Get("profession"),
		Education:     values.Get("education"),
		Religion:      values.Get("religion"),
		Caste:         values.Get("caste"),
		Income:        values.Get("income"),
	}
	for name, dst := range map[string]*int{"age": &q.Age, "height": &q.Height, "weight": &q.Weight} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := utils.ParseID(raw, name)
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		*dst = int(n)
	}

	home, err := h.service.Discover(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, "discover", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, home)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
