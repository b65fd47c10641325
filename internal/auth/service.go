// internal/auth/service.go
// Account lifecycle: registration, login, password and account settings

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = errs.Unauthenticated("Invalid credentials")

type Service struct {
	users      users.Repository
	media      storage.MediaStore
	policy     retry.Policy
	bcryptCost int
	maxUpload  int64
}

func NewService(repo users.Repository, media storage.MediaStore, policy retry.Policy, bcryptCost int, maxUpload int64) *Service {
	return &Service{
		users:      repo,
		media:      media,
		policy:     policy,
		bcryptCost: bcryptCost,
		maxUpload:  maxUpload,
	}
}

// Register creates an account. avatar is optional.
func (s *Service) Register(ctx context.Context, req RegisterRequest, avatar *storage.Upload) (*users.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.InvalidOperation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
	}

	if avatar != nil {
		if err := storage.Check(*avatar, storage.ImageTypes, s.maxUpload); err != nil {
			return nil, err
		}
		url, err := s.media.Save(ctx, "avatars", *avatar)
		if err != nil {
			return nil, err
		}
		user.DpImage = &url
	}

	err = s.policy.Do(ctx, "users.create", func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if user.DpImage != nil {
			s.discardMedia(ctx, *user.DpImage)
		}
		return nil, err
	}

	logger.Info(ctx, "user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks email, mobile and password together
func (s *Service) Login(ctx context.Context, req LoginRequest) (*users.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Mobile == "" || req.Password == "" {
		return nil, errs.InvalidOperation("Email, mobile, and password are required")
	}

	user, err := retry.Value(ctx, s.policy, "users.get_by_email", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByEmail(ctx, email)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.Mobile != req.Mobile {
		return nil, errInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errInvalidCredentials
	}

	return user, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*users.User, error) {
	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found.")
	}
	return user, err
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return errs.InvalidOperation(err.Error())
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return errs.Unauthenticated("Incorrect current password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	return s.policy.Do(ctx, "users.update_password", func(ctx context.Context) error {
		return s.users.UpdatePassword(ctx, userID, string(hash))
	})
}

func (s *Service) NotificationSettings(ctx context.Context, userID int64) (NotificationSettings, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return NotificationSettings{}, err
	}
	return NotificationSettings{
		EmailNotifications: user.EmailNotifications,
		SMSNotifications:   user.SMSNotifications,
	}, nil
}

func (s *Service) UpdateNotificationSettings(ctx context.Context, userID int64, settings NotificationSettings) error {
	err := s.policy.Do(ctx, "users.update_notification_settings", func(ctx context.Context) error {
		return s.users.UpdateNotificationSettings(ctx, userID, settings.EmailNotifications, settings.SMSNotifications)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound("User not found.")
	}
	return err
}

// DeleteAccount removes the user, their messages and reports, and every reference to them
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	err = s.policy.Do(ctx, "users.delete", func(ctx context.Context) error {
		return s.users.Delete(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound("User not found.")
	}
	if err != nil {
		return err
	}

	for _, url := range []*string{user.DpImage, user.ProfileImage} {
		if url != nil {
			s.discardMedia(ctx, *url)
		}
	}

	logger.Info(ctx, "account deleted", zap.Int64("user_id", userID))
	return nil
}

func (s *Service) discardMedia(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		logger.Warn(ctx, "failed to delete media", zap.String("url", url), zap.Error(err))
	}
}
