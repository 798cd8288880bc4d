package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library/internal/cache"
	"library/internal/db"
	apperrors "library/internal/errors"
	"library/internal/model"
	"library/internal/repository"
)

// The seed librarian. The password is a published default that operators are expected to change.
const (
	DefaultLibrarianName     = "Librarian"
	DefaultLibrarianEmail    = "librarian@example.com"
	DefaultLibrarianPassword = "admin123"

	librarianLockKey = "library:bootstrap:librarian"
)

// Locker serialises work across processes. release is never nil, even on error.
type Locker interface {
	Lock(ctx context.Context, key string, ttl, wait time.Duration) (release func(), err error)
}

// LibrarianService guarantees the library always has a privileged account.
type LibrarianService interface {
	// EnsureDefaultLibrarian inserts the seed librarian when no librarian exists.
	// created is false when one already existed or a concurrent bootstrap won the insert.
	EnsureDefaultLibrarian(ctx context.Context) (created bool, err error)
}

type librarianService struct {
	repo    repository.AccountRepository
	locker  Locker
	lockTTL time.Duration
	logger  *zap.SugaredLogger
}

// NewLibrarianService creates the provisioning service. locker may be a disabled cache client.
func NewLibrarianService(repo repository.AccountRepository, locker Locker, lockTTL time.Duration, logger *zap.SugaredLogger) LibrarianService {
	return &librarianService{
		repo:    repo,
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

func (s *librarianService) EnsureDefaultLibrarian(ctx context.Context) (bool, error) {
	release, err := s.locker.Lock(ctx, librarianLockKey, s.lockTTL, s.lockTTL)
	defer release()
	switch {
	case errors.Is(err, cache.ErrLockNotAcquired):
		// The unique email index still prevents a second seed account.
		s.logger.Warnw("bootstrap lock held elsewhere, continuing without it", "key", librarianLockKey)
	case err != nil:
		return false, fmt.Errorf("acquire bootstrap lock: %w", err)
	}

	created := false
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.AccountRepository) error {
		existing, err := repo.FindFirstByRole(ctx, model.RoleLibrarian)
		if err == nil {
			s.logger.Debugw("librarian present", "email", existing.Email)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check librarian: %w", err)
		}

		librarian := &model.Account{
			Name:     DefaultLibrarianName,
			Email:    DefaultLibrarianEmail,
			Role:     model.RoleLibrarian,
			Approved: true,
		}
		if err := librarian.SetPassword(DefaultLibrarianPassword); err != nil {
			return err
		}
		if err := repo.Create(ctx, librarian); err != nil {
			return fmt.Errorf("create librarian: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return false, s.confirmConcurrentInsert(ctx, err)
		}
		return false, err
	}

	if created {
		s.logger.Infow("created default librarian", "email", DefaultLibrarianEmail)
	}
	return created, nil
}

// confirmConcurrentInsert checks that a duplicate email on insert came from a
// concurrent bootstrap creating the librarian. When the email is held by an
// account that is not a live librarian, nothing can satisfy the invariant.
func (s *librarianService) confirmConcurrentInsert(ctx context.Context, dupErr error) error {
	existing, err := s.repo.FindFirstByRole(ctx, model.RoleLibrarian)
	switch {
	case err == nil:
		s.logger.Warnw("seed librarian already inserted by a concurrent bootstrap", "email", existing.Email)
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s is held by another account: %v", apperrors.ErrNoLibrarian, DefaultLibrarianEmail, dupErr)
	default:
		return fmt.Errorf("recheck librarian: %w", err)
	}
}
