package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletd/internal/config"
	"github.com/congo-pay/walletd/internal/middleware"
	"github.com/congo-pay/walletd/internal/notification"
	"github.com/congo-pay/walletd/internal/payment"
	"github.com/congo-pay/walletd/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. DB, Cache and Nats may be
// nil in development, in which case in-memory or logging fallbacks are used.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Nats   *nats.Conn
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	svc := wallet.NewService(walletRepository(d), paymentAuthorizer(d), walletNotifier(d), d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	limiter := middleware.RateLimit(d.Cache, d.Cfg.RateLimitPerMinute, d.Logger)
	RegisterWalletRoutes(api.Group("", limiter), wallet.NewHandler(svc))
	return nil
}

func walletRepository(d Deps) wallet.Repository {
	var repo wallet.Repository
	if d.DB != nil {
		repo = wallet.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, wallets are kept in memory")
		repo = wallet.NewMemoryRepository()
	}
	if d.Cache != nil {
		repo = wallet.NewCachedRepository(repo, d.Cache, d.Cfg.WalletCacheTTL, d.Logger)
	}
	return repo
}

func paymentAuthorizer(d Deps) payment.Authorizer {
	var auth payment.Authorizer
	if d.Cfg.PaymentChargesURL != "" {
		auth = payment.NewHTTPAuthorizer(d.Cfg.PaymentChargesURL, d.Cfg.PaymentTimeout)
	} else {
		d.Logger.Info("no payment processor configured, using static authorizer",
			slog.String("minimum_amount", d.Cfg.PaymentMinAmount.String()))
		auth = payment.NewStaticAuthorizer(d.Cfg.PaymentMinAmount)
	}
	return payment.NewCircuitBreaker(auth, payment.BreakerConfig{
		FailureThreshold: d.Cfg.PaymentBreakerFailures,
		OpenTimeout:      d.Cfg.PaymentBreakerOpenTimeout,
	})
}

func walletNotifier(d Deps) notification.Notifier {
	if d.Nats != nil {
		return notification.NewNatsNotifier(d.Nats, d.Cfg.NatsSubjectPrefix)
	}
	return notification.NewLoggerNotifier(d.Logger)
}
