package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/lifesim-quest/lifesim-cli/internal/adapters/api"
	filesecrets "github.com/lifesim-quest/lifesim-cli/internal/adapters/secrets/file"
	"github.com/lifesim-quest/lifesim-cli/internal/adapters/state"
	"github.com/lifesim-quest/lifesim-cli/internal/application"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

type clientConfig struct {
	APIBaseURL     string        `env:"LIFESIM_API_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"LIFESIM_REQUEST_TIMEOUT" envDefault:"30s"`
	SecretsDir     string        `env:"LIFESIM_SECRETS_DIR"`
}

type app struct {
	cfg        clientConfig
	local      *state.Store
	secrets    ports.SecretStore
	gameAPI    *api.Client
	authAPI    *api.AuthClient
	cache      *application.Cache
	executor   *application.Executor
	queries    *application.Queries
	resolver   *application.NextQuestionResolver
	rehydrator *application.Rehydrator
	now        func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := env.ParseAs[clientConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}

	if cfg.SecretsDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SecretsDir = filepath.Join(homeDir, ".lifesim", "secrets")
	}

	local, err := state.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire local state store: %w", err)
	}

	secrets := filesecrets.NewStore(cfg.SecretsDir)

	authAPI := &api.AuthClient{
		Client: &api.Client{
			BaseURL:        cfg.APIBaseURL,
			HTTPClient:     http.DefaultClient,
			RequestTimeout: cfg.RequestTimeout,
		},
		Secrets: secrets,
	}

	logger := slog.New(slog.DiscardHandler)
	rehydrator := application.NewRehydrator(authAPI, logger)

	gameAPI := &api.Client{
		BaseURL:        cfg.APIBaseURL,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.RequestTimeout,
		Token:          rehydrator.AccessToken,
	}

	cache := application.NewCache(ports.SystemClock{}, logger)

	return &app{
		cfg:        cfg,
		local:      local,
		secrets:    secrets,
		gameAPI:    gameAPI,
		authAPI:    authAPI,
		cache:      cache,
		executor:   application.NewExecutor(cache, gameAPI, local),
		queries:    application.NewQueries(cache, gameAPI, rehydrator),
		resolver:   application.NewNextQuestionResolver(cache, gameAPI, logger),
		rehydrator: rehydrator,
		now:        time.Now,
	}, nil
}

// rehydrate restores the auth session from the stored refresh credential.
// Safe to call from every command; only the first call does work.
func (a *app) rehydrate(ctx context.Context) {
	a.rehydrator.Run(ctx)
}
