// Package app wires the pipeline host together: logger, configuration
// loading, producer registration, and the run itself.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/ctxlog"
	"github.com/vk/textweave/internal/hclcfg"
	"github.com/vk/textweave/internal/producers"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	producers *producers.Registry
	model     *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and producer
// registry, or an error when the pipeline definition cannot be loaded.
func NewApp(outW io.Writer, appConfig *Config, registrations ...func(*producers.Registry)) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	loader := hclcfg.NewLoader()
	model, err := loader.Load(ctx, appConfig.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline definition: %w", err)
	}
	logger.Debug("Pipeline definition loaded.", "modules", len(model.Modules))

	reg := producers.NewRegistry()
	if len(registrations) == 0 {
		registrations = coreProducers
	}
	for _, register := range registrations {
		register(reg)
	}
	logger.Debug("Producers registered.", "kinds", reg.Kinds())

	return &App{
		outW:      outW,
		logger:    logger,
		producers: reg,
		model:     model,
	}, nil
}

// Model returns the loaded pipeline model. Primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
