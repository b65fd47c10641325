// internal/users/repository.go

package users

import (
	"context"
	"time"
)

// SearchFilter narrows the discovery listing. Zero values mean "no filter".
type SearchFilter struct {
	ExcludeID int64

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

	BornAfter  *time.Time
	BornBefore *time.Time
	HeightMin  *int
	HeightMax  *int
	WeightMin  *int
	WeightMax  *int

	Genders      []string
	Orientations []string
}

// Repository is the user directory. Lookups of a missing user return an error wrapping errs.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetSummaries returns cards for the ids that still exist, in the order given
	GetSummaries(ctx context.Context, ids []int64) ([]Summary, error)
	Search(ctx context.Context, filter SearchFilter) ([]User, error)

	// ModifyPair locks both users, lets fn edit their edge sets and saves both atomically.
	// An error from fn aborts without writing.
	ModifyPair(ctx context.Context, aID, bID int64, fn func(a, b *User) error) error
	// ModifyUser is ModifyPair for edits that touch a single user's edge sets
	ModifyUser(ctx context.Context, id int64, fn func(u *User) error) error

	UpdateProfile(ctx context.Context, id int64, profile Profile) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateNotificationSettings(ctx context.Context, id int64, email, sms bool) error

	// Delete removes the user and pulls its id from every other user's edge sets
	Delete(ctx context.Context, id int64) error
}
