package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

type StorageBackend string

const (
	StorageJSON      StorageBackend = "json"
	StorageMemory    StorageBackend = "memory"
	StorageSQLite    StorageBackend = "sqlite"
	StoragePostgres  StorageBackend = "postgres"
	StorageFirestore StorageBackend = "firestore"
)

type Config struct {
	Port string `help:"HTTP listen port." env:"SOULSYNC_PORT,PORT" default:"8080"`

	StorageBackend StorageBackend `help:"Where collections are persisted." env:"SOULSYNC_STORAGE_BACKEND" enum:"json,memory,sqlite,postgres,firestore" default:"json"`
	DataDir        string         `help:"Directory for the json and sqlite backends." env:"SOULSYNC_DATA_DIR" default:"./data"`
	DatabaseURL    string         `help:"PostgreSQL connection string." env:"DATABASE_URL"`
	GCPProjectID   string         `name:"gcp-project" help:"Google Cloud project for the firestore backend." env:"SOULSYNC_GCP_PROJECT"`

	CORSOrigins []string `name:"cors-origins" help:"Allowed CORS origins." env:"CORS_ORIGINS" default:"*"`

	TelegramBotToken string        `help:"Telegram bot token for emergency alerts." env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL   string        `name:"telegram-api-url" help:"Telegram Bot API base URL." env:"SOULSYNC_TELEGRAM_API_URL" default:"https://api.telegram.org"`
	NotifyTimeout    time.Duration `help:"Timeout for outbound notifications." env:"SOULSYNC_NOTIFY_TIMEOUT" default:"10s"`
	AutoNotify       bool          `name:"auto-notify-on-crisis" help:"Alert the emergency contact when a chat message signals a crisis." env:"SOULSYNC_AUTO_NOTIFY" default:"true" negatable:""`

	JWTSecret   string        `name:"jwt-secret" help:"Secret for signing bearer tokens." env:"SOULSYNC_JWT_SECRET"`
	TokenTTL    time.Duration `name:"token-ttl" help:"Bearer token lifetime." env:"SOULSYNC_TOKEN_TTL" default:"24h"`
	RequireAuth bool          `help:"Require a bearer token on user-scoped routes." env:"SOULSYNC_REQUIRE_AUTH"`

	LogLevel string `help:"Log level (debug, info, warn, error)." env:"SOULSYNC_LOG_LEVEL" default:"info"`
	LogFile  string `help:"Also write logs to this rotating file." env:"SOULSYNC_LOG_FILE"`

	UseKeyring bool `help:"Fill unset secrets from the OS keyring." env:"SOULSYNC_USE_KEYRING"`
}

// Parse reads flags from args with environment fallbacks.
func Parse(args []string) (*Config, error) {
	var cfg Config

	parser, err := kong.New(&cfg,
		kong.Name("soulsync-api"),
		kong.Description("SoulSync backend API"),
	)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageJSON, StorageSQLite:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("--data-dir is required for the %s backend", c.StorageBackend)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" && !c.UseKeyring {
			return fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}
	case StorageFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("SOULSYNC_GCP_PROJECT must be set for the firestore backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("notify timeout must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.RequireAuth && c.JWTSecret == "" && !c.UseKeyring {
		return fmt.Errorf("--require-auth needs SOULSYNC_JWT_SECRET")
	}
	return nil
}
