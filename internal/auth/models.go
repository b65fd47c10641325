// internal/auth/models.go

package auth

import "github.com/imadgeboyega/matchmaking-backend/internal/users"

// RegisterRequest is the sign-up form; sent as JSON or multipart with an optional DpImage file
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
}

// UserResponse is the public view of the logged-in account
type UserResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Mobile       string  `json:"mobile"`
	DpImage      *string `json:"DpImage"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		DpImage:      u.DpImage,
		ProfileImage: u.ProfileImage,
	}
}
