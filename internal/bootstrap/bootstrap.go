// Package bootstrap assembles the application from its configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	httpadapter "github.com/williskipsjr/SoulSync-Beta/internal/adapters/http"
	"github.com/williskipsjr/SoulSync-Beta/internal/adapters/notify"
	firestorestore "github.com/williskipsjr/SoulSync-Beta/internal/adapters/storage/firestore"
	"github.com/williskipsjr/SoulSync-Beta/internal/adapters/storage/jsonfile"
	memstore "github.com/williskipsjr/SoulSync-Beta/internal/adapters/storage/memory"
	"github.com/williskipsjr/SoulSync-Beta/internal/adapters/storage/sqlstore"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/account"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/conversation"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/emergency"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/mood"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/status"
	"github.com/williskipsjr/SoulSync-Beta/internal/auth"
	"github.com/williskipsjr/SoulSync-Beta/internal/config"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
	"github.com/williskipsjr/SoulSync-Beta/internal/secrets"
)

type App struct {
	Handler http.Handler
	Logger  *slog.Logger
	backend domain.CollectionBackend
}

func (a *App) Close() error {
	return a.backend.Close()
}

// New initialises logging, opens the configured backend and wires every
// service behind a single HTTP handler.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := observability.Init(observability.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	if cfg.UseKeyring {
		if err := resolveSecrets(cfg); err != nil {
			logger.Warn("keyring lookup failed, continuing with explicit configuration", "error", err)
		}
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", "backend", cfg.StorageBackend)

	users := records.New[domain.User](backend, domain.CollectionUsers)
	conversations := records.New[domain.Conversation](backend, domain.CollectionConversations)
	entries := records.New[domain.MoodEntry](backend, domain.CollectionMoodEntries)
	checks := records.New[domain.StatusCheck](backend, domain.CollectionStatusChecks)

	accounts := account.NewService(users)

	telegram := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramAPIURL, cfg.NotifyTimeout)
	if !telegram.Configured() {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, emergency alerts are disabled")
	}
	relay := emergency.NewService(accounts, telegram)

	var onCrisis conversation.EmergencyNotifier
	if cfg.AutoNotify {
		onCrisis = relay
	}

	var tokens *auth.Issuer
	if cfg.JWTSecret != "" {
		tokens, err = auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
	} else {
		logger.Warn("SOULSYNC_JWT_SECRET not set, login responses carry no token")
	}
	if cfg.RequireAuth && tokens == nil {
		_ = backend.Close()
		return nil, fmt.Errorf("--require-auth needs a JWT secret")
	}

	handler := httpadapter.NewServer(httpadapter.Deps{
		Accounts:      accounts,
		Conversations: conversation.NewService(conversations, nil, onCrisis),
		Mood:          mood.NewService(entries),
		Emergency:     relay,
		Status:        status.NewService(checks),
		Tokens:        tokens,
		RequireAuth:   cfg.RequireAuth,
		CORSOrigins:   cfg.CORSOrigins,
	})

	return &App{Handler: handler, Logger: logger, backend: backend}, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (domain.CollectionBackend, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return memstore.NewBackend(), nil
	case config.StorageJSON:
		return jsonfile.NewBackend(cfg.DataDir)
	case config.StorageSQLite:
		return sqlstore.Open(ctx, sqlstore.DialectSQLite, filepath.Join(cfg.DataDir, "soulsync.db"))
	case config.StoragePostgres:
		return sqlstore.Open(ctx, sqlstore.DialectPostgres, cfg.DatabaseURL)
	case config.StorageFirestore:
		return firestorestore.NewStore(ctx, cfg.GCPProjectID)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func resolveSecrets(cfg *config.Config) error {
	var err error
	if cfg.TelegramBotToken, err = secrets.Resolve(cfg.TelegramBotToken, secrets.TelegramBotToken); err != nil {
		return err
	}
	if cfg.JWTSecret, err = secrets.Resolve(cfg.JWTSecret, secrets.JWTSecret); err != nil {
		return err
	}
	if cfg.DatabaseURL, err = secrets.Resolve(cfg.DatabaseURL, secrets.DatabaseURL); err != nil {
		return err
	}
	return nil
}
