// internal/support/models.go

package support

import "time"

// Request is a help desk ticket. UserID is cleared when the account goes away.
type Request struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"userId"`
	Email     string    `db:"email" json:"email"`
	Mobile    string    `db:"mobile" json:"mobile"`
	Message   string    `db:"message" json:"message"`
	Supported bool      `db:"supported" json:"supported"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// from the requesting user, when it still exists
	UserName   *string `db:"user_name" json:"userName"`
	UserMobile *string `db:"user_mobile" json:"userMobile"`
}

type SubmitRequest struct {
	Message string `json:"message"`
}

type MarkHandledRequest struct {
	ID int64 `json:"id"`
}
