// Package infrastructure provides core service initialization for application startup.
// It assembles the common dependencies (logging, AWS client configuration,
// lifecycle coordination) that the pipeline units and their hosts require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/pkg/cloud"
	"github.com/JaimeStill/docflow/pkg/lifecycle"
)

// Infrastructure holds the core systems required by every host.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	AWS       aws.Config
}

// New creates an Infrastructure from the application configuration.
// It resolves AWS client configuration but performs no network calls; call
// Start to register the credential check.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(&cfg.Logging, os.Stderr)

	awsCfg, err := cloud.Load(ctx, &cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("aws init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		AWS:       awsCfg,
	}, nil
}

// NewLogger builds a slog.Logger writing to w in the configured format and level.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers infrastructure startup hooks with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	logger := i.Logger.With("system", "aws")

	i.Lifecycle.OnStartup("aws", func(ctx context.Context) error {
		if err := cloud.CheckCredentials(ctx, i.AWS); err != nil {
			logger.Error("credential check failed", "error", err)
			return err
		}
		logger.Info("credentials resolved", "region", i.AWS.Region)
		return nil
	})

	return nil
}
