// internal/profile/models.go

package profile

import (
	"encoding/json"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
)

// InformationRequest is the profile form, sent as JSON or multipart with an
// optional profileImage file. Height and weight accept numbers or numeric strings.
type InformationRequest struct {
	Country             string      `json:"country"`
	State               string      `json:"state"`
	District            string      `json:"district"`
	Religion            string      `json:"religion"`
	Caste               string      `json:"caste"`
	CurrentPlace        string      `json:"currentPlace"`
	Gender              string      `json:"gender"`
	Orientation         string      `json:"orientation"`
	MaritalStatus       string      `json:"maritalStatus"`
	DateOfBirth         string      `json:"dob"`
	Height              json.Number `json:"height"`
	Weight              json.Number `json:"weight"`
	Education           string      `json:"education"`
	Profession          string      `json:"profession"`
	Income              string      `json:"income"`
	Languages           string      `json:"languages"`
	Habits              string      `json:"habits"`
	Diet                string      `json:"diet"`
	PartnerExpectations string      `json:"partnerExpectations"`
	FamilyDetails       string      `json:"familyDetails"`
	Horoscope           string      `json:"horoscope"`
	Address             string      `json:"Address"`
}

// Information is the profile as shown on the information page
type Information struct {
	users.Profile
	CurrentPlace string `json:"currentPlace"`
}

// ValidationError lists the offending fields of a profile form
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}

func (e *ValidationError) Unwrap() error {
	return errs.ErrInvalidOperation
}

// DiscoverQuery holds the /home filters. Zero values mean "no filter".
type DiscoverQuery struct {
	Name          string
	Country       string
	State         string
	MaritalStatus string
	CurrentPlace  string
	Profession    string
	Education     string
	Religion      string
	Caste         string
	Income        string

	// each matches within five of the given value
	Age    int
	Height int
	Weight int
}

type CurrentUser struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Gender        *string `json:"gender"`
	Orientation   *string `json:"orientation"`
	SentInterests []int64 `json:"sentInterests"`
}

// Card is one compatible user in the discovery listing
type Card struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Age           *int    `json:"age"`
	Height        *int    `json:"height"`
	Weight        *int    `json:"weight"`
	Profession    *string `json:"profession"`
	Location      string  `json:"location"`
	MaritalStatus *string `json:"maritalStatus"`
	Education     *string `json:"education"`
	Religion      *string `json:"religion"`
	Caste         *string `json:"caste"`
	Income        *string `json:"income"`
	DpImage       *string `json:"DpImage"`
}

type Home struct {
	CurrentUser     CurrentUser `json:"currentUser"`
	CompatibleUsers []Card      `json:"compatibleUsers"`
}
