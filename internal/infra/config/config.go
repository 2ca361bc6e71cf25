package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL      string
	HTTPListenAddr   string
	AppName          string // used as the push notification title
	PushAPIURL       string
	CronSpecDispatch string // fixed schedule for the reminder dispatch run
	RunMigrations    bool
	LogLevel         string
	Environment      string

	// Optional owner chat surface. The bot is disabled when the token is
	// empty; when enabled, both owner ids are required so chat actions map to
	// exactly one account.
	TelegramToken   string
	OwnerTelegramID int64
	OwnerUserID     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.AppName = os.Getenv("APP_NAME")
	if cfg.AppName == "" {
		cfg.AppName = "Forget Me Not"
	}

	cfg.PushAPIURL = os.Getenv("PUSH_API_URL")
	if cfg.PushAPIURL == "" {
		cfg.PushAPIURL = defaultExpoPushURL
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "0 9 * * *" // Default: 9:00 AM daily
	}

	cfg.RunMigrations = true
	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
		}
		cfg.RunMigrations = parsed
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		ownerIDStr := os.Getenv("OWNER_TELEGRAM_ID")
		if ownerIDStr == "" {
			return nil, fmt.Errorf("OWNER_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
		}
		var err error
		cfg.OwnerTelegramID, err = strconv.ParseInt(ownerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_TELEGRAM_ID: %w", err)
		}

		cfg.OwnerUserID = os.Getenv("OWNER_USER_ID")
		if cfg.OwnerUserID == "" {
			return nil, fmt.Errorf("OWNER_USER_ID is required when TELEGRAM_TOKEN is set")
		}
	}

	return cfg, nil
}
