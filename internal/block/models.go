// internal/block/models.go

package block

import "time"

// Report is a complaint one user files against another
type Report struct {
	ID             int64     `db:"id" json:"id"`
	ReportedUserID int64     `db:"reported_user_id" json:"reportedUser"`
	ReporterID     int64     `db:"reporter_id" json:"reporter"`
	Message        string    `db:"message" json:"message"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// BlockedUser is one entry of the blocked list
type BlockedUser struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	DpImage *string `json:"DpImage"`
}

type ReportRequest struct {
	Message string `json:"message"`
}
