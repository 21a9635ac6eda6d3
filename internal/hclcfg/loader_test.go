package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const pipelineHCL = `
settings {
  max_parallelism     = 4
  fail_fast           = false
  overall_deadline_ms = 5000
  cache_ttl_s         = 300
  separator           = "\n\n"
  strict              = false
}

validation {
  rule_packs = ["rules.yaml"]
}

module "statictext" "intro" {
  priority = 10
  text     = "Introduction to {subject}."
}

module "cachedsource" "glossary" {
  cache_scope = "per_input"
  source      = "glossary.txt"
  ttl_s       = 60
}

module "contextjoin" "summary" {
  depends_on = ["intro", "glossary"]
  keys       = ["intro_text"]
  header     = "## Summary"
}
`

func TestLoad_FullPipelineFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pipeline.hcl", pipelineHCL)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 4, model.Settings.MaxParallelism)
	assert.Equal(t, 5000, model.Settings.OverallDeadlineMS)
	assert.Equal(t, 300, model.Settings.CacheTTLSeconds)
	assert.False(t, model.Settings.FailFast)
	assert.Equal(t, []string{"rules.yaml"}, model.Validation.RulePacks)

	require.Len(t, model.Modules, 3)

	intro := model.Modules[0]
	assert.Equal(t, "statictext", intro.Kind)
	assert.Equal(t, "intro", intro.Name)
	assert.Equal(t, 10, intro.Priority)
	text, ok := intro.Arg("text")
	require.True(t, ok)
	assert.Equal(t, "Introduction to {subject}.", text.AsString())

	glossary := model.Modules[1]
	assert.Equal(t, "cachedsource", glossary.Kind)
	assert.Equal(t, "per_input", glossary.CacheScope)

	summary := model.Modules[2]
	assert.Equal(t, []string{"intro", "glossary"}, summary.DependsOn)
}

func TestLoad_SingleFilePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.hcl", `module "statictext" "only" { text = "x" }`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Modules, 1)
	assert.Equal(t, "only", model.Modules[0].Name)
}

func TestLoad_ModulesMergeAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `module "statictext" "a" { text = "a" }`)
	writeFile(t, dir, "b.hcl", `module "statictext" "b" { text = "b" }`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, model.Modules, 2)
}

func TestLoad_DuplicateSettingsBlocksRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `settings { max_parallelism = 1 }`)
	writeFile(t, dir, "b.hcl", `settings { max_parallelism = 2 }`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate settings block")
}

func TestLoad_DuplicateModuleNameRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `
module "statictext" "same" { text = "one" }
module "statictext" "same" { text = "two" }
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate module name "same"`)
}

func TestLoad_VariableReferencesRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `module "statictext" "x" { text = var.not_allowed }`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluating argument")
}

func TestLoad_NegativeSettingRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `
settings { cache_ttl_s = -1 }
module "statictext" "x" { text = "x" }
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_ttl_s")
}

func TestLoad_NoFilesIsAnError(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl pipeline files")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.hcl", `module "statictext" { text =`)

	_, err := NewLoader().Load(context.Background(), dir)
	assert.Error(t, err)
}
