// internal/admin/service.go

package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/block"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	notProvided   = "Not provided"
	defaultReason = "No reason provided"
)

var errInvalidCredentials = errs.Unauthenticated("Invalid credentials")

// Notifier tells a removed user what happened
type Notifier interface {
	AccountRemoved(ctx context.Context, u *users.User, reason string)
}

type Service struct {
	repo       Repository
	users      users.Repository
	reports    block.ReportRepository
	media      storage.MediaStore
	notifier   Notifier
	policy     retry.Policy
	bcryptCost int
}

func NewService(repo Repository, userRepo users.Repository, reports block.ReportRepository, media storage.MediaStore, notifier Notifier, policy retry.Policy, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		users:      userRepo,
		reports:    reports,
		media:      media,
		notifier:   notifier,
		policy:     policy,
		bcryptCost: bcryptCost,
	}
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := retry.Value(ctx, s.policy, "admins.get", func(ctx context.Context) (*Admin, error) {
		return s.repo.GetByEmail(ctx, email)
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	a := &Admin{Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	logger.Info(ctx, "admin account created", zap.String("email", a.Email))
	return nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Admin, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, errs.InvalidOperation(err.Error())
	}

	a, err := retry.Value(ctx, s.policy, "admins.get", func(ctx context.Context) (*Admin, error) {
		return s.repo.GetByEmail(ctx, req.Email)
	})
	if errors.Is(err, errs.ErrNotFound) {
		logger.Warn(ctx, "admin login failed", zap.String("email", req.Email))
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		logger.Warn(ctx, "admin login failed", zap.String("email", req.Email))
		return nil, errInvalidCredentials
	}
	return a, nil
}

// Dashboard counts users overall and per gender
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		total  int64
		counts map[string]int64
	)
	err := s.policy.Do(ctx, "admin.gender_counts", func(ctx context.Context) error {
		var err error
		total, counts, err = s.repo.GenderCounts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	genders := make(map[string]int64, len(users.Genders))
	for _, g := range users.Genders {
		genders[g] = 0
	}
	for g, n := range counts {
		genders[g] = n
	}
	return &Dashboard{TotalUsers: total, Genders: genders}, nil
}

// Reports groups every report by the reported user, keeping the newest group first
func (s *Service) Reports(ctx context.Context) ([]ReportGroup, error) {
	all, err := retry.Value(ctx, s.policy, "reports.list", func(ctx context.Context) ([]block.Report, error) {
		return s.reports.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	lookup := s.userCache()
	groups := []ReportGroup{}
	index := make(map[int64]int)
	for _, rep := range all {
		i, ok := index[rep.ReportedUserID]
		if !ok {
			reported, err := lookup(ctx, rep.ReportedUserID)
			if err != nil {
				return nil, err
			}
			if reported == nil {
				continue
			}
			i = len(groups)
			index[rep.ReportedUserID] = i
			groups = append(groups, ReportGroup{
				ReportedUser: UserCard{ID: reported.ID, Name: reported.Name, DpImage: reported.DpImage},
			})
		}

		reporter, err := lookup(ctx, rep.ReporterID)
		if err != nil {
			return nil, err
		}
		groups[i].Reports = append(groups[i].Reports, ReportEntry{
			Message:   rep.Message,
			CreatedAt: rep.CreatedAt,
			Reporter:  reporterCard(reporter),
		})
		groups[i].Count++
	}
	return groups, nil
}

func (s *Service) Blocks(ctx context.Context) ([]BlockCount, error) {
	return retry.Value(ctx, s.policy, "admin.block_counts", func(ctx context.Context) ([]BlockCount, error) {
		return s.repo.BlockCounts(ctx)
	})
}

func (s *Service) History(ctx context.Context) ([]Removal, error) {
	return retry.Value(ctx, s.policy, "admin.history", func(ctx context.Context) ([]Removal, error) {
		return s.repo.History(ctx)
	})
}

// RemoveUser deletes an account on behalf of an admin, keeping a snapshot of the
// profile and the reports against it
func (s *Service) RemoveUser(ctx context.Context, adminID, userID int64, reason string) (*Removal, error) {
	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	against, err := retry.Value(ctx, s.policy, "reports.list_against", func(ctx context.Context) ([]block.Report, error) {
		return s.reports.ListAgainst(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	lookup := s.userCache()
	entries := make(RemovedReports, 0, len(against))
	for _, rep := range against {
		reporter, err := lookup(ctx, rep.ReporterID)
		if err != nil {
			return nil, err
		}
		msg := rep.Message
		if msg == "" {
			msg = "No message"
		}
		entries = append(entries, ReportEntry{Message: msg, CreatedAt: rep.CreatedAt, Reporter: reporterCard(reporter)})
	}

	reason = strings.TrimSpace(reason)
	rm := &Removal{
		UserID:      user.ID,
		Name:        orDefault(user.Name, "Unknown"),
		Email:       orDefault(user.Email, notProvided),
		UserDetails: snapshot(user),
		ReportCount: len(entries),
		Reports:     entries,
		DeletedBy:   &adminID,
		Reason:      orDefault(reason, defaultReason),
	}

	if err := s.repo.RemoveUser(ctx, rm); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	adminActions.WithLabelValues("remove_user").Inc()
	logger.Info(ctx, "user removed by admin",
		zap.Int64("user_id", userID),
		zap.Int64("admin_id", adminID),
		zap.Int("report_count", rm.ReportCount))

	for _, url := range []*string{user.DpImage, user.ProfileImage} {
		if url == nil {
			continue
		}
		if err := s.media.Delete(ctx, *url); err != nil {
			logger.Warn(ctx, "failed to delete media", zap.String("url", *url), zap.Error(err))
		}
	}
	s.notifier.AccountRemoved(ctx, user, reason)
	return rm, nil
}

// userCache loads users by id once per call. A deleted user comes back nil.
func (s *Service) userCache() func(ctx context.Context, id int64) (*users.User, error) {
	seen := make(map[int64]*users.User)
	return func(ctx context.Context, id int64) (*users.User, error) {
		if u, ok := seen[id]; ok {
			return u, nil
		}
		u, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
			return s.users.GetByID(ctx, id)
		})
		if errors.Is(err, errs.ErrNotFound) {
			seen[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		seen[id] = u
		return u, nil
	}
}

func reporterCard(u *users.User) *Reporter {
	if u == nil {
		return nil
	}
	return &Reporter{
		ID:      u.ID,
		Name:    orDefault(u.Name, "Unknown"),
		Email:   orDefault(u.Email, notProvided),
		Mobile:  orDefault(u.Mobile, notProvided),
		Address: deref(u.Address),
	}
}

func snapshot(u *users.User) Snapshot {
	return Snapshot{
		Name:                orDefault(u.Name, "Unknown"),
		Email:               orDefault(u.Email, notProvided),
		Mobile:              orDefault(u.Mobile, notProvided),
		DpImage:             derefOr(u.DpImage, ""),
		ProfileImage:        derefOr(u.ProfileImage, ""),
		Country:             deref(u.Country),
		State:               deref(u.State),
		District:            deref(u.District),
		Religion:            deref(u.Religion),
		Address:             deref(u.Address),
		Caste:               deref(u.Caste),
		CurrentPlace:        deref(u.CurrentPlace),
		Gender:              deref(u.Gender),
		Orientation:         deref(u.Orientation),
		MaritalStatus:       deref(u.MaritalStatus),
		DateOfBirth:         u.DateOfBirth,
		Height:              intOr(u.Height),
		Weight:              intOr(u.Weight),
		Education:           deref(u.Education),
		Profession:          deref(u.Profession),
		Income:              deref(u.Income),
		Languages:           deref(u.Languages),
		Habits:              deref(u.Habits),
		Diet:                deref(u.Diet),
		PartnerExpectations: deref(u.PartnerExpectations),
		FamilyDetails:       deref(u.FamilyDetails),
		Horoscope:           deref(u.Horoscope),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func deref(s *string) string { return derefOr(s, notProvided) }

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return orDefault(*s, def)
}

func intOr(n *int) string {
	if n == nil || *n == 0 {
		return notProvided
	}
	return strconv.Itoa(*n)
}
