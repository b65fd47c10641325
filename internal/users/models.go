// internal/users/models.go
// User records and the relationship edge sets stored on them

package users

import (
	"time"

	"github.com/lib/pq"
)

// Gender values offered at sign-up
const (
	GenderMan              = "Man"
	GenderWoman            = "Woman"
	GenderTransgenderMan   = "TransgenderMan"
	GenderTransgenderWoman = "TransgenderWoman"
	GenderNonBinary        = "Non-Binary"
)

// Genders lists every gender the admin dashboard reports on
var Genders = []string{GenderMan, GenderWoman, GenderTransgenderMan, GenderTransgenderWoman, GenderNonBinary}

// Profile holds the optional self-described attributes of a user
type Profile struct {
	Country             *string    `db:"country" json:"country,omitempty"`
	State               *string    `db:"state" json:"state,omitempty"`
	District            *string    `db:"district" json:"district,omitempty"`
	Religion            *string    `db:"religion" json:"religion,omitempty"`
	Caste               *string    `db:"caste" json:"caste,omitempty"`
	CurrentPlace        *string    `db:"current_place" json:"currentPlace,omitempty"`
	Gender              *string    `db:"gender" json:"gender,omitempty"`
	Orientation         *string    `db:"orientation" json:"orientation,omitempty"`
	MaritalStatus       *string    `db:"marital_status" json:"maritalStatus,omitempty"`
	DateOfBirth         *time.Time `db:"dob" json:"dob,omitempty"`
	Height              *int       `db:"height" json:"height,omitempty"`
	Weight              *int       `db:"weight" json:"weight,omitempty"`
	Education           *string    `db:"education" json:"education,omitempty"`
	Profession          *string    `db:"profession" json:"profession,omitempty"`
	Income              *string    `db:"income" json:"income,omitempty"`
	Languages           *string    `db:"languages" json:"languages,omitempty"`
	Habits              *string    `db:"habits" json:"habits,omitempty"`
	Diet                *string    `db:"diet" json:"diet,omitempty"`
	PartnerExpectations *string    `db:"partner_expectations" json:"partnerExpectations,omitempty"`
	FamilyDetails       *string    `db:"family_details" json:"familyDetails,omitempty"`
	Horoscope           *string    `db:"horoscope" json:"horoscope,omitempty"`
	Address             *string    `db:"address" json:"Address,omitempty"`
	ProfileImage        *string    `db:"profile_image" json:"profileImage,omitempty"`
}

// User is an account plus its four relationship edge sets.
// Edge sets hold user ids and are only changed through Repository.ModifyPair and ModifyUser.
type User struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	Mobile       string  `db:"mobile" json:"mobile"`
	PasswordHash string  `db:"password_hash" json:"-"`
	DpImage      *string `db:"dp_image" json:"DpImage"`

	Profile

	EmailNotifications bool `db:"email_notifications" json:"emailNotifications"`
	SMSNotifications   bool `db:"sms_notifications" json:"smsNotifications"`

	SentInterests     pq.Int64Array `db:"sent_interests" json:"-"`
	ReceivedInterests pq.Int64Array `db:"received_interests" json:"-"`
	AcceptedInterests pq.Int64Array `db:"accepted_interests" json:"-"`
	BlockedUsers      pq.Int64Array `db:"blocked_users" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Summary is the short card shown in interest and block lists
type Summary struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	DpImage *string `db:"dp_image" json:"DpImage"`
	Gender  *string `db:"gender" json:"gender"`
	Age     *int    `db:"-" json:"age"`

	DateOfBirth *time.Time `db:"dob" json:"-"`
}

// DpImageOrEmpty returns the avatar URL or ""
func (u *User) DpImageOrEmpty() string {
	if u.DpImage == nil {
		return ""
	}
	return *u.DpImage
}

func (s *Summary) DpImageOrEmpty() string {
	if s.DpImage == nil {
		return ""
	}
	return *s.DpImage
}

// Age returns whole years since dob at now, or nil when unknown or implausible.
func Age(dob *time.Time, now time.Time) *int {
	if dob == nil {
		return nil
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 || age > 120 {
		return nil
	}
	return &age
}
