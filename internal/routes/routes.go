package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/starswipe/starswipe/internal/asset"
	"github.com/starswipe/starswipe/internal/auth"
	"github.com/starswipe/starswipe/internal/card"
	"github.com/starswipe/starswipe/internal/config"
	"github.com/starswipe/starswipe/internal/events"
	"github.com/starswipe/starswipe/internal/history"
	"github.com/starswipe/starswipe/internal/merchant"
	"github.com/starswipe/starswipe/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends
	var cardRepo card.Repository
	var histRepo history.Repository
	var merchantRepo merchant.Repository
	var gateway asset.Gateway
	var configStore asset.ConfigStore
	if d.DB != nil {
		cardRepo = card.NewPostgresRepository(d.DB)
		histRepo = history.NewPostgresRepository(d.DB)
		merchantRepo = merchant.NewPostgresRepository(d.DB)
		gateway = asset.NewLedgerGateway(d.DB)
		configStore = asset.NewPostgresConfig(d.DB)
	} else {
		cardRepo = card.NewMemoryRepository()
		histRepo = history.NewMemoryRepository()
		merchantRepo = merchant.NewMemoryRepository()
		// Without a custody ledger, settlement happens out of band: approve
		// transfers instead of tracking balances nobody seeded.
		gateway = asset.StaticGateway{}
		configStore = asset.NewMemoryConfig(d.Cfg.AssetContract)
	}
	if d.Cache != nil {
		configStore = asset.NewCachedConfig(configStore, d.Cache)
	}

	// Principals are verified signatures in every non-dev environment.
	var authorizer auth.Authorizer
	if d.Cfg.IsDev() {
		authorizer = auth.Insecure()
	} else {
		authorizer = auth.NewEd25519()
	}

	notifiers := events.MultiNotifier{events.NewLoggerNotifier(d.Logger)}
	if d.Cache != nil {
		notifiers = append(notifiers, events.NewStreamNotifier(d.Cache, 10_000))
	}

	cardSvc := card.NewService(cardRepo, gateway, configStore, authorizer, histRepo, notifiers, d.Logger)
	merchantSvc := merchant.NewService(merchantRepo)

	cardHandler := card.NewHandler(cardSvc, func(ctx context.Context, merchantID string) (string, error) {
		m, err := merchantSvc.Get(ctx, merchantID)
		if err != nil {
			return "", err
		}
		return m.PayoutAddress, nil
	})
	merchantHandler := merchant.NewHandler(merchantSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterCardRoutes(api, cardHandler, histRepo, d.Cache, d.Cfg.ChargePerMinute)
	RegisterMerchantRoutes(api, merchantHandler)
	RegisterConfigRoutes(api, cardSvc, configStore, d.Cfg.AdminToken)

	return nil
}
