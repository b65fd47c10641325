// internal/profile/service.go

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

type Service struct {
	users     users.Repository
	media     storage.MediaStore
	policy    retry.Policy
	maxUpload int64
	now       func() time.Time
}

func NewService(userRepo users.Repository, media storage.MediaStore, policy retry.Policy, maxUpload int64) *Service {
	return &Service{users: userRepo, media: media, policy: policy, maxUpload: maxUpload, now: time.Now}
}

func (s *Service) getUser(ctx context.Context, userID int64, missing string) (*users.User, error) {
	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound(missing)
	}
	return user, err
}

// Information returns the user's profile attributes
func (s *Service) Information(ctx context.Context, userID int64) (*Information, error) {
	user, err := s.getUser(ctx, userID, "User information not found.")
	if err != nil {
		return nil, err
	}
	info := &Information{Profile: user.Profile}
	if user.CurrentPlace != nil {
		info.CurrentPlace = *user.CurrentPlace
	}
	return info, nil
}

// SaveInformation replaces the whole profile. Every required field must be present.
func (s *Service) SaveInformation(ctx context.Context, userID int64, req InformationRequest, image *storage.Upload) (*users.User, error) {
	return s.write(ctx, userID, req, image, true)
}

// UpdateInformation changes only the fields present in req
func (s *Service) UpdateInformation(ctx context.Context, userID int64, req InformationRequest, image *storage.Upload) (*users.User, error) {
	return s.write(ctx, userID, req, image, false)
}

func (s *Service) write(ctx context.Context, userID int64, req InformationRequest, image *storage.Upload, replace bool) (*users.User, error) {
	user, err := s.getUser(ctx, userID, "User not found.")
	if err != nil {
		return nil, err
	}

	problems := make(map[string]string)
	if replace {
		missingFields(req, problems)
	}
	p := user.Profile
	applyForm(&p, req, replace, problems)
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}

	// a nil image keeps the stored one
	p.ProfileImage = nil
	if image != nil {
		if err := storage.Check(*image, storage.ImageTypes, s.maxUpload); err != nil {
			return nil, err
		}
		url, err := s.media.Save(ctx, "images", *image)
		if err != nil {
			return nil, err
		}
		p.ProfileImage = &url
	}

	err = s.policy.Do(ctx, "users.update_profile", func(ctx context.Context) error {
		return s.users.UpdateProfile(ctx, userID, p)
	})
	if err != nil {
		if p.ProfileImage != nil {
			s.discardMedia(ctx, *p.ProfileImage)
		}
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found.")
		}
		return nil, err
	}
	if p.ProfileImage != nil && user.ProfileImage != nil {
		s.discardMedia(ctx, *user.ProfileImage)
	}

	kind := "update"
	if replace {
		kind = "save"
	}
	profileUpdates.WithLabelValues(kind).Inc()
	logger.Info(ctx, "profile information written", zap.Int64("user_id", userID), zap.String("kind", kind))

	return s.getUser(ctx, userID, "User not found.")
}

func (s *Service) discardMedia(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		logger.Warn(ctx, "failed to delete media", zap.String("url", url), zap.Error(err))
	}
}

var requiredFields = []struct {
	key, message string
	value        func(InformationRequest) string
}{
	{"country", "Country is required", func(r InformationRequest) string { return r.Country }},
	{"gender", "Gender is required", func(r InformationRequest) string { return r.Gender }},
	{"dob", "Date of birth is required", func(r InformationRequest) string { return r.DateOfBirth }},
	{"religion", "Religion is required", func(r InformationRequest) string { return r.Religion }},
	{"height", "Height is required", func(r InformationRequest) string { return r.Height.String() }},
	{"weight", "Weight is required", func(r InformationRequest) string { return r.Weight.String() }},
	{"education", "Education is required", func(r InformationRequest) string { return r.Education }},
	{"profession", "Profession is required", func(r InformationRequest) string { return r.Profession }},
	{"income", "Income is required", func(r InformationRequest) string { return r.Income }},
	{"languages", "Languages Known is required", func(r InformationRequest) string { return r.Languages }},
	{"habits", "Habits is required", func(r InformationRequest) string { return r.Habits }},
	{"diet", "Diet Preference is required", func(r InformationRequest) string { return r.Diet }},
	{"partnerExpectations", "Partner Expectations is required", func(r InformationRequest) string { return r.PartnerExpectations }},
	{"familyDetails", "Family Background is required", func(r InformationRequest) string { return r.FamilyDetails }},
	{"horoscope", "Horoscope / Zodiac is required", func(r InformationRequest) string { return r.Horoscope }},
	{"Address", "Address is required", func(r InformationRequest) string { return r.Address }},
	{"currentPlace", "Current Place of Residence is required", func(r InformationRequest) string { return r.CurrentPlace }},
	{"maritalStatus", "Marital Status is required", func(r InformationRequest) string { return r.MaritalStatus }},
	{"orientation", "Sexual Orientation is required", func(r InformationRequest) string { return r.Orientation }},
}

func missingFields(req InformationRequest, problems map[string]string) {
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(req)) == "" {
			problems[f.key] = f.message
		}
	}
}

// applyForm copies the form onto p. With replace set, blank fields clear the stored value.
func applyForm(p *users.Profile, req InformationRequest, replace bool, problems map[string]string) {
	text := func(dst **string, v string) {
		v = strings.TrimSpace(v)
		switch {
		case v != "":
			*dst = &v
		case replace:
			*dst = nil
		}
	}
	text(&p.Country, req.Country)
	text(&p.State, req.State)
	text(&p.District, req.District)
	text(&p.Religion, req.Religion)
	text(&p.Caste, req.Caste)
	text(&p.CurrentPlace, req.CurrentPlace)
	text(&p.Orientation, req.Orientation)
	text(&p.MaritalStatus, req.MaritalStatus)
	text(&p.Education, req.Education)
	text(&p.Profession, req.Profession)
	text(&p.Income, req.Income)
	text(&p.Languages, req.Languages)
	text(&p.Habits, req.Habits)
	text(&p.Diet, req.Diet)
	text(&p.PartnerExpectations, req.PartnerExpectations)
	text(&p.FamilyDetails, req.FamilyDetails)
	text(&p.Horoscope, req.Horoscope)
	text(&p.Address, req.Address)

	if g := strings.TrimSpace(req.Gender); g != "" && !contains(users.Genders, g) {
		problems["gender"] = "Gender must be one of: " + strings.Join(users.Genders, ", ")
	} else {
		text(&p.Gender, g)
	}

	number := func(dst **int, v json.Number, key, label string) {
		raw := strings.TrimSpace(v.String())
		if raw == "" {
			if replace {
				*dst = nil
			}
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			if _, ok := problems[key]; !ok {
				problems[key] = label + " must be a positive whole number"
			}
			return
		}
		*dst = &n
	}
	number(&p.Height, req.Height, "height", "Height")
	number(&p.Weight, req.Weight, "weight", "Weight")

	if raw := strings.TrimSpace(req.DateOfBirth); raw != "" {
		dob, err := parseDate(raw)
		if err != nil {
			problems["dob"] = "Date of birth must be a date (YYYY-MM-DD)"
		} else {
			p.DateOfBirth = &dob
		}
	} else if replace {
		p.DateOfBirth = nil
	}
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
