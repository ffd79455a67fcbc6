package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/verinova/onboarding/internal/config"
	"github.com/verinova/onboarding/internal/identity"
	"github.com/verinova/onboarding/internal/infra"
	"github.com/verinova/onboarding/internal/middleware"
	"github.com/verinova/onboarding/internal/notification"
	"github.com/verinova/onboarding/internal/presign"
	"github.com/verinova/onboarding/internal/storage"
	"github.com/verinova/onboarding/internal/uploads"
)

const uploadsNamespace = "uploads"

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// are optional; without them accounts and uploads live in memory and the
// idempotency middleware is skipped.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		identityRepo identity.Repository
		blobs        storage.Store
	)
	if d.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := infra.Migrate(ctx, d.DB); err != nil {
			return err
		}
		identityRepo = identity.NewPostgresRepository(d.DB)
		blobs = storage.NewPostgresStore(d.DB, uploadsNamespace)
	} else {
		identityRepo = identity.NewMemoryRepository()
		blobs = storage.NewMemoryStore()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo, notifier, d.Logger)
	identityHandler := identity.NewHandler(identitySvc, d.Logger)

	signer, err := presign.NewSigner(d.Cfg.UploadSecret, d.Cfg.UploadURLTTL)
	if err != nil {
		return err
	}
	uploadHandler := uploads.NewHandler(signer, blobs, d.Cfg.PublicURL, d.Logger)

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var signupGuards []fiber.Handler
	if d.Cache != nil {
		signupGuards = append(signupGuards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterIdentityRoutes(app, identityHandler, signupGuards, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit))
	RegisterUploadRoutes(app, uploadHandler, middleware.UploadToken(signer))

	return nil
}
