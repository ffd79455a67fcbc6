package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/verinova/onboarding/internal/notification"
	"github.com/verinova/onboarding/internal/profile"
)

var (
	// ErrInvalidCredentials hides whether the mobile or the MPIN was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned for signup payloads that cannot be stored.
	ErrInvalidInput = errors.New("invalid signup details")
)

// Service manages account registration and MPIN verification.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService creates a new identity service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Register creates an account from a signup profile and stores a hashed MPIN.
func (s *Service) Register(ctx context.Context, p profile.UserProfile) (Account, error) {
	mobile := strings.TrimSpace(p.Mobile)
	if mobile == "" {
		return Account{}, fmt.Errorf("%w: mobile is required", ErrInvalidInput)
	}
	if !isMPIN(p.MPIN) {
		return Account{}, fmt.Errorf("%w: mpin must be 4 digits", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.MPIN), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:          uuid.New().String(),
		Mobile:      mobile,
		Name:        strings.TrimSpace(p.Name),
		DOB:         p.DOB,
		Address:     strings.TrimSpace(p.Address),
		AadharURL:   p.AadharURL,
		PANURL:      p.PANURL,
		SelfieURL:   p.SelfieURL,
		MPINHash:    hash,
		Fingerprint: p.Fingerprint,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}

	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindAccountCreated,
			Destination: account.Mobile,
			Body:        "Welcome to Verinova, " + p.FirstName() + ". Your account is ready.",
		}
		if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
			s.logger.Warn("welcome notification failed", slog.String("account_id", account.ID), slog.Any("error", err))
		}
	}

	return account, nil
}

// Authenticate verifies the MPIN for a mobile number.
func (s *Service) Authenticate(ctx context.Context, mobile, mpin string) (Account, error) {
	account, err := s.repo.FindByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword(account.MPINHash, []byte(mpin)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.RecordLogin(ctx, account.ID, now); err != nil {
		if s.logger != nil {
			s.logger.Warn("record login failed", slog.String("account_id", account.ID), slog.Any("error", err))
		}
	} else {
		account.LastLogin = &now
	}

	return account, nil
}

func isMPIN(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
