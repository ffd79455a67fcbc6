package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verinova/onboarding/internal/authclient"
	"github.com/verinova/onboarding/internal/config"
	"github.com/verinova/onboarding/internal/logging"
	"github.com/verinova/onboarding/internal/session"
	"github.com/verinova/onboarding/internal/storage"
)

const usage = `usage: onboard <command> [flags]

commands:
  status    show the stored profile and landing screen
  signup    create an account (uploads documents, then registers)
  login     log in with mobile number and MPIN
  unlock    log in again as the stored user with the MPIN
  update    change profile fields locally
  logout    clear the session and stored profile
`

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	session *session.Store
	client  *authclient.Client
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"status": runStatus,
	"signup": runSignup,
	"login":  runLogin,
	"unlock": runUnlock,
	"update": runUpdate,
	"logout": runLogout,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "onboard %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	client, err := authclient.New(cfg.APIBaseURL,
		authclient.WithTimeout(cfg.RequestTimeout),
		authclient.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	s := session.New(store, client,
		session.WithLogger(logger),
		session.WithRequestTimeout(cfg.RequestTimeout),
	)
	s.Initialize(ctx)

	cmdErr := cmd(ctx, &app{cfg: cfg, logger: logger, session: s, client: client}, args)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(closeCtx); err != nil {
		cmdErr = errors.Join(cmdErr, fmt.Errorf("save session: %w", err))
	}
	return cmdErr
}
