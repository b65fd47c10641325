// internal/profile/discovery.go

package profile

import (
	"context"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
)

const (
	orientationHeterosexual = "Heterosexual"

	// matching window for age, height and weight filters
	rangeSlack = 5
)

var sameSexOrientations = []string{"Homosexual", "Gay", "Lesbian"}

// Discover lists the users compatible with the caller's gender and orientation,
// narrowed by the query. Users either side has blocked are left out.
func (s *Service) Discover(ctx context.Context, userID int64, q DiscoverQuery) (*Home, error) {
	me, err := s.getUser(ctx, userID, "User not found")
	if err != nil {
		return nil, err
	}

	filter := users.SearchFilter{
		ExcludeID:     me.ID,
		Name:          q.Name,
		Country:       q.Country,
		State:         q.State,
		MaritalStatus: q.MaritalStatus,
		CurrentPlace:  q.CurrentPlace,
		Profession:    q.Profession,
		Education:     q.Education,
		Religion:      q.Religion,
		Caste:         q.Caste,
		Income:        q.Income,
	}
	now := s.now().UTC()
	if q.Age > 0 {
		after := now.AddDate(-(q.Age + rangeSlack), 0, 0)
		before := now.AddDate(-(q.Age - rangeSlack), 0, 0)
		filter.BornAfter, filter.BornBefore = &after, &before
	}
	if q.Height > 0 {
		filter.HeightMin, filter.HeightMax = bounds(q.Height)
	}
	if q.Weight > 0 {
		filter.WeightMin, filter.WeightMax = bounds(q.Weight)
	}
	filter.Genders, filter.Orientations = compatibility(me)

	found, err := retry.Value(ctx, s.policy, "users.search", func(ctx context.Context) ([]users.User, error) {
		return s.users.Search(ctx, filter)
	})
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(found))
	for i := range found {
		u := &found[i]
		if users.Contains(me.BlockedUsers, u.ID) || users.Contains(u.BlockedUsers, me.ID) {
			continue
		}
		cards = append(cards, toCard(u, now))
	}
	discoveryResults.Observe(float64(len(cards)))

	sent := []int64(me.SentInterests)
	if sent == nil {
		sent = []int64{}
	}
	return &Home{
		CurrentUser: CurrentUser{
			ID:            me.ID,
			Name:          me.Name,
			Email:         me.Email,
			Gender:        me.Gender,
			Orientation:   me.Orientation,
			SentInterests: sent,
		},
		CompatibleUsers: cards,
	}, nil
}

// compatibility picks the genders and orientations a user can be matched with.
// Heterosexual users see the other binary gender. Same-sex orientations see their
// own gender within the same-sex set. Other orientations see only themselves.
func compatibility(me *users.User) (genders, orientations []string) {
	gender := deref(me.Gender)
	orientation := deref(me.Orientation)

	switch {
	case orientation == orientationHeterosexual:
		switch gender {
		case users.GenderMan:
			genders = []string{users.GenderWoman}
		case users.GenderWoman:
			genders = []string{users.GenderMan}
		}
	case contains(sameSexOrientations, orientation):
		if gender != "" {
			genders = []string{gender}
		}
		orientations = sameSexOrientations
	case orientation != "":
		orientations = []string{orientation}
	}
	return genders, orientations
}

func bounds(v int) (*int, *int) {
	lo, hi := v-rangeSlack, v+rangeSlack
	return &lo, &hi
}

func toCard(u *users.User, now time.Time) Card {
	location := "N/A"
	if u.CurrentPlace != nil && *u.CurrentPlace != "" {
		location = *u.CurrentPlace
	}
	return Card{
		ID:            u.ID,
		Name:          u.Name,
		Age:           users.Age(u.DateOfBirth, now),
		Height:        u.Height,
		Weight:        u.Weight,
		Profession:    u.Profession,
		Location:      location,
		MaritalStatus: u.MaritalStatus,
		Education:     u.Education,
		Religion:      u.Religion,
		Caste:         u.Caste,
		Income:        u.Income,
		DpImage:       u.DpImage,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
