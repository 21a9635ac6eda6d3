package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/textweave/internal/cache"
	"github.com/vk/textweave/internal/ctxlog"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/pipeline"
	"github.com/vk/textweave/internal/producers"
	"github.com/vk/textweave/internal/validate"
)

// Run executes the loaded pipeline and writes the artifact to the output
// writer.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	settings := a.model.Settings
	deps := producers.Deps{
		Cache:      cache.Default(),
		DefaultTTL: time.Duration(settings.CacheTTLSeconds) * time.Second,
	}
	mods, err := a.producers.Build(a.model, deps)
	if err != nil {
		return fmt.Errorf("failed to build modules: %w", err)
	}

	var rules []validate.Rule
	for _, pack := range a.model.Validation.RulePacks {
		loaded, err := validate.LoadRulePack(pack)
		if err != nil {
			return fmt.Errorf("failed to load validation rules: %w", err)
		}
		rules = append(rules, loaded...)
	}

	cfg := pipeline.Config{
		MaxParallelism:  settings.MaxParallelism,
		FailFast:        settings.FailFast,
		OverallDeadline: time.Duration(settings.OverallDeadlineMS) * time.Millisecond,
		CacheTTL:        deps.DefaultTTL,
		Separator:       settings.Separator,
		Strict:          settings.Strict,
		Rules:           rules,
		Cache:           deps.Cache,
	}
	if appConfig.Workers > 0 {
		cfg.MaxParallelism = appConfig.Workers
	}

	input := &module.Input{Subject: appConfig.Subject}

	a.logger.Info("Starting pipeline run.", "modules", len(mods), "subject", input.Subject)
	result, err := pipeline.Run(ctx, input, mods, cfg)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Fprintln(a.outW, result.Artifact)

	for _, issue := range result.Validation.Issues {
		a.logger.Warn("Validation issue.", "kind", issue.Kind, "severity", issue.Severity, "message", issue.Message)
	}
	a.logger.Info("Pipeline run complete.",
		"runID", result.Metadata.RunID,
		"executed", len(result.Metadata.Executed),
		"failed", len(result.Metadata.Failed),
		"skipped", len(result.Metadata.Skipped),
		"cacheHits", result.Metadata.CacheHits,
		"cacheMisses", result.Metadata.CacheMisses,
		"incomplete", result.Metadata.Incomplete,
		"validationOK", result.Validation.OK,
		"duration", result.Metadata.Duration,
	)

	if !result.Validation.OK {
		return fmt.Errorf("artifact failed validation with %d issue(s)", len(result.Validation.Issues))
	}
	return nil
}
