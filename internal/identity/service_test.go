package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verinova/onboarding/internal/notification"
	"github.com/verinova/onboarding/internal/profile"
)

type recordingNotifier struct {
	sent []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, m notification.Message) error {
	n.sent = append(n.sent, m)
	return nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(NewMemoryRepository(), notifier, nil)
	ctx := context.Background()

	account, err := svc.Register(ctx, profile.UserProfile{Mobile: "9999999999", Name: "Alice Doe", MPIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if string(account.MPINHash) == "1234" || len(account.MPINHash) == 0 {
		t.Fatal("mpin must be stored hashed")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Kind != notification.KindAccountCreated || notifier.sent[0].Destination != "9999999999" {
		t.Fatalf("expected welcome notification, got %+v", notifier.sent)
	}

	authed, err := svc.Authenticate(ctx, "9999999999", "1234")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.Name != "Alice Doe" || authed.LastLogin == nil {
		t.Fatalf("unexpected account %+v", authed)
	}
}

func TestAuthenticateRejectsWrongMPIN(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "123456", MPIN: "1234"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "123456", "4321"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "654321", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown mobile must look like a bad mpin, got %v", err)
	}
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "123456", MPIN: "1234"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "123456", MPIN: "1234"}); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "", MPIN: "1234"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty mobile, got %v", err)
	}
	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "777777", MPIN: "12"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for short mpin, got %v", err)
	}
}

type failingLoginRepo struct {
	Repository
}

func (failingLoginRepo) RecordLogin(context.Context, string, time.Time) error {
	return errors.New("connection refused")
}

func TestAuthenticateLeavesLastLoginUnsetWhenRecordFails(t *testing.T) {
	svc := NewService(failingLoginRepo{Repository: NewMemoryRepository()}, nil, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, profile.UserProfile{Mobile: "9999999999", MPIN: "1234"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	account, err := svc.Authenticate(ctx, "9999999999", "1234")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.LastLogin != nil {
		t.Fatalf("last login must stay unset when it was not recorded, got %v", account.LastLogin)
	}
}
