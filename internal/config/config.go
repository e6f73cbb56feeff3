package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultAppName            = "walletd"
	defaultAppEnv             = "development"
	defaultPort               = "8080"
	defaultLogLevel           = "info"
	defaultShutdownDelay      = 10 * time.Second
	defaultWalletCacheTTL     = 5 * time.Minute
	defaultPaymentTimeout     = 5 * time.Second
	defaultPaymentMinAmount   = "10"
	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second
	defaultRateLimitPerMinute = 120
	defaultNatsSubjectPrefix  = "wallet"
	shutdownSecondsEnvVar     = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar    = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	NatsURL        string
	ShutdownPeriod time.Duration

	// NatsSubjectPrefix prefixes every wallet event subject, e.g. "wallet.recharged".
	NatsSubjectPrefix string
	WalletCacheTTL    time.Duration

	PaymentChargesURL         string
	PaymentTimeout            time.Duration
	PaymentMinAmount          decimal.Decimal
	PaymentBreakerFailures    int
	PaymentBreakerOpenTimeout time.Duration

	RateLimitPerMinute int
}

// Load reads configuration values from the environment (and an optional .env file)
// and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:                   getEnv("APP_NAME", defaultAppName),
		AppEnv:                    getEnv("APP_ENV", defaultAppEnv),
		Port:                      getEnv("PORT", defaultPort),
		LogLevel:                  strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisURL:                  os.Getenv("REDIS_URL"),
		NatsURL:                   os.Getenv("NATS_URL"),
		NatsSubjectPrefix:         getEnv("NATS_SUBJECT_PREFIX", defaultNatsSubjectPrefix),
		ShutdownPeriod:            defaultShutdownDelay,
		WalletCacheTTL:            defaultWalletCacheTTL,
		PaymentChargesURL:         os.Getenv("PAYMENT_CHARGES_URL"),
		PaymentTimeout:            defaultPaymentTimeout,
		PaymentBreakerFailures:    defaultBreakerFailures,
		PaymentBreakerOpenTimeout: defaultBreakerOpenTimeout,
		RateLimitPerMinute:        defaultRateLimitPerMinute,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	var err error
	if cfg.WalletCacheTTL, err = durationEnv("WALLET_CACHE_TTL", cfg.WalletCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = durationEnv("PAYMENT_TIMEOUT", cfg.PaymentTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PaymentBreakerOpenTimeout, err = durationEnv("PAYMENT_BREAKER_OPEN_TIMEOUT", cfg.PaymentBreakerOpenTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PaymentBreakerFailures, err = intEnv("PAYMENT_BREAKER_FAILURES", cfg.PaymentBreakerFailures); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute); err != nil {
		return Config{}, err
	}

	minAmount, err := decimal.NewFromString(getEnv("PAYMENT_MIN_AMOUNT", defaultPaymentMinAmount))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PAYMENT_MIN_AMOUNT: %w", err)
	}
	cfg.PaymentMinAmount = minAmount

	if cfg.DatabaseURL == "" && !cfg.IsDevelopment() {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment reports whether the service may fall back to in-memory collaborators.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
