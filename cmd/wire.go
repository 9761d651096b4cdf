package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/viper"

	configadapter "github.com/bnema/claude-usage-tracker/internal/adapters/config"
	chainstore "github.com/bnema/claude-usage-tracker/internal/adapters/secrets/chain"
	"github.com/bnema/claude-usage-tracker/internal/adapters/usageapi"
	"github.com/bnema/claude-usage-tracker/internal/application"
	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

type app struct {
	config  *configadapter.Config
	service *application.Service
}

func wireApp() (*app, error) {
	cfg, err := configadapter.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}

	if baseURL := os.Getenv("CU_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	secretStore, err := chainstore.NewKeychainFirstWithFileFallback(application.ServiceName, cfg.SecretsPath)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	factory := func(creds domain.Credentials) ports.UsageSource {
		return usageapi.New(cfg.BaseURL, cfg.UserAgent, creds, httpClient)
	}

	return &app{
		config:  cfg,
		service: application.NewService(secretStore, factory, ports.SystemClock{}),
	}, nil
}

// ensureCredentials configures the usage source, preferring environment
// overrides over the secret store. The not-configured state is not an
// error; the display sentinel reports it.
func (a *app) ensureCredentials(ctx context.Context) error {
	envCreds := domain.Credentials{
		SessionKey: os.Getenv("CU_SESSION_KEY"),
		OrgID:      os.Getenv("CU_ORG_ID"),
	}
	if envCreds.Validate() == nil {
		return a.service.UseCredentials(envCreds)
	}

	return a.service.LoadCredentials(ctx)
}
