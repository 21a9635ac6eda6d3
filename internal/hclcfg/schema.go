package hclcfg

import "github.com/hashicorp/hcl/v2"

// fileSchema is the HCL-specific shape of one pipeline definition file.
type fileSchema struct {
	Settings   *settingsSchema   `hcl:"settings,block"`
	Modules    []*moduleSchema   `hcl:"module,block"`
	Validation *validationSchema `hcl:"validation,block"`
}

type settingsSchema struct {
	MaxParallelism    int    `hcl:"max_parallelism,optional"`
	FailFast          bool   `hcl:"fail_fast,optional"`
	OverallDeadlineMS int    `hcl:"overall_deadline_ms,optional"`
	CacheTTLSeconds   int    `hcl:"cache_ttl_s,optional"`
	Separator         string `hcl:"separator,optional"`
	Strict            bool   `hcl:"strict,optional"`
}

// moduleSchema is a `module "<kind>" "<name>" { ... }` block. Everything
// past the known attributes is kind-specific and captured by Rest.
type moduleSchema struct {
	Kind       string   `hcl:"kind,label"`
	Name       string   `hcl:"name,label"`
	DependsOn  []string `hcl:"depends_on,optional"`
	Priority   int      `hcl:"priority,optional"`
	CacheScope string   `hcl:"cache_scope,optional"`
	Rest       hcl.Body `hcl:",remain"`
}

type validationSchema struct {
	RulePacks []string `hcl:"rule_packs,optional"`
}
