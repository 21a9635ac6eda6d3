// Package hclcfg loads pipeline definitions written in HCL and translates
// them into the format-agnostic config model.
package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/ctxlog"
	"github.com/vk/textweave/internal/fsutil"
)

// Loader parses .hcl pipeline files into the agnostic model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads every .hcl file under the given paths (files or directories)
// and merges them into a single model. Module blocks accumulate across
// files; settings and validation blocks may appear at most once overall.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("discovering pipeline files in %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found in %v", paths)
	}
	logger.Debug("Pipeline files discovered.", "count", len(files))

	model := &config.Model{}
	seenSettings := false
	seenValidation := false
	for _, file := range files {
		parsed, err := l.parseFile(file)
		if err != nil {
			return nil, err
		}
		if parsed.Settings != nil {
			if seenSettings {
				return nil, fmt.Errorf("%s: duplicate settings block (already declared in another file)", file)
			}
			seenSettings = true
			model.Settings = translateSettings(parsed.Settings)
		}
		if parsed.Validation != nil {
			if seenValidation {
				return nil, fmt.Errorf("%s: duplicate validation block (already declared in another file)", file)
			}
			seenValidation = true
			model.Validation = config.Validation{RulePacks: parsed.Validation.RulePacks}
		}
		for _, mod := range parsed.Modules {
			block, err := translateModule(mod)
			if err != nil {
				return nil, fmt.Errorf("%s: module %q: %w", file, mod.Name, err)
			}
			model.Modules = append(model.Modules, block)
		}
	}

	if err := validateModel(model); err != nil {
		return nil, err
	}
	return model, nil
}

func (l *Loader) parseFile(path string) (*fileSchema, error) {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	var parsed fileSchema
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	return &parsed, nil
}

func translateSettings(s *settingsSchema) config.Settings {
	return config.Settings{
		MaxParallelism:    s.MaxParallelism,
		FailFast:          s.FailFast,
		OverallDeadlineMS: s.OverallDeadlineMS,
		CacheTTLSeconds:   s.CacheTTLSeconds,
		Separator:         s.Separator,
		Strict:            s.Strict,
	}
}

// translateModule statically evaluates the kind-specific attributes of a
// module block. Pipeline definitions are data, not programs: attribute
// expressions may not reference variables or call functions.
func translateModule(m *moduleSchema) (*config.ModuleBlock, error) {
	args := make(map[string]cty.Value)
	if m.Rest != nil {
		attrs, diags := m.Rest.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("reading arguments: %w", diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(&hcl.EvalContext{})
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluating argument %q: %w", name, diags)
			}
			args[name] = val
		}
	}
	return &config.ModuleBlock{
		Kind:       m.Kind,
		Name:       m.Name,
		DependsOn:  m.DependsOn,
		Priority:   m.Priority,
		CacheScope: m.CacheScope,
		Args:       args,
	}, nil
}

func validateModel(model *config.Model) error {
	if model.Settings.MaxParallelism < 0 {
		return fmt.Errorf("settings: max_parallelism must not be negative")
	}
	if model.Settings.OverallDeadlineMS < 0 {
		return fmt.Errorf("settings: overall_deadline_ms must not be negative")
	}
	if model.Settings.CacheTTLSeconds < 0 {
		return fmt.Errorf("settings: cache_ttl_s must not be negative")
	}

	seen := make(map[string]bool, len(model.Modules))
	for _, mod := range model.Modules {
		if mod.Name == "" {
			return fmt.Errorf("module of kind %q has an empty name", mod.Kind)
		}
		if seen[mod.Name] {
			return fmt.Errorf("duplicate module name %q", mod.Name)
		}
		seen[mod.Name] = true
	}
	return nil
}
