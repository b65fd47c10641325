// internal/admin/models.go

package admin

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Admin is a console account. Admins are separate from users.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RemoveRequest struct {
	Reason string `json:"reason"`
}

// Dashboard is the console landing summary. Genders always carries every sign-up gender.
type Dashboard struct {
	TotalUsers int64            `json:"totalUsers"`
	Genders    map[string]int64 `json:"genders"`
}

type UserCard struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	DpImage *string `json:"DpImage"`
}

// Reporter is the contact card of a user who filed a report
type Reporter struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Address string `json:"Address"`
}

type ReportEntry struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Reporter  *Reporter `json:"reporter"`
}

// ReportGroup collects every report filed against one user
type ReportGroup struct {
	ReportedUser UserCard      `json:"reportedUser"`
	Count        int           `json:"count"`
	Reports      []ReportEntry `json:"reports"`
}

// BlockCount is how many users have blocked a given user
type BlockCount struct {
	BlockedUser UserCard `json:"blockedUser"`
	Count       int64    `json:"count"`
}

// Snapshot freezes a removed user's profile. Missing text fields read "Not provided".
type Snapshot struct {
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Mobile              string     `json:"mobile"`
	DpImage             string     `json:"DpImage"`
	ProfileImage        string     `json:"profileImage"`
	Country             string     `json:"country"`
	State               string     `json:"state"`
	District            string     `json:"district"`
	Religion            string     `json:"religion"`
	Address             string     `json:"Address"`
	Caste               string     `json:"caste"`
	CurrentPlace        string     `json:"currentPlace"`
	Gender              string     `json:"gender"`
	Orientation         string     `json:"orientation"`
	MaritalStatus       string     `json:"maritalStatus"`
	DateOfBirth         *time.Time `json:"dob"`
	Height              string     `json:"height"`
	Weight              string     `json:"weight"`
	Education           string     `json:"education"`
	Profession          string     `json:"profession"`
	Income              string     `json:"income"`
	Languages           string     `json:"languages"`
	Habits              string     `json:"habits"`
	Diet                string     `json:"diet"`
	PartnerExpectations string     `json:"partnerExpectations"`
	FamilyDetails       string     `json:"familyDetails"`
	Horoscope           string     `json:"horoscope"`
}

func (s Snapshot) Value() (driver.Value, error) { return json.Marshal(s) }

func (s *Snapshot) Scan(src interface{}) error { return scanJSON(src, s) }

// RemovedReports are the reports held against a user at removal time
type RemovedReports []ReportEntry

func (r RemovedReports) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ReportEntry(r))
}

func (r *RemovedReports) Scan(src interface{}) error { return scanJSON(src, r) }

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return errors.New("unsupported jsonb source")
	}
}

// Removal is the audit record left behind when an admin removes an account
type Removal struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"userId"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	UserDetails    Snapshot       `db:"user_details" json:"userDetails"`
	ReportCount    int            `db:"report_count" json:"reportCount"`
	Reports        RemovedReports `db:"reports" json:"reports"`
	DeletedAt      time.Time      `db:"deleted_at" json:"deletedAt"`
	DeletedBy      *int64         `db:"deleted_by" json:"deletedBy"`
	DeletedByEmail *string        `db:"deleted_by_email" json:"deletedByEmail"`
	Reason         string         `db:"reason" json:"reason"`
}
