// Package cachedsource provides a producer that pulls its content through
// the shared cache layer, so many pipeline runs share one backing load per
// TTL window.
package cachedsource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/cache"
	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/producers"
)

// Kind is the producer kind label used in pipeline definitions.
const Kind = "cachedsource"

// Register binds the producer factory into the registry.
func Register(r *producers.Registry) {
	r.Register(Kind, New)
}

// fileLoader is the default backing loader: the source key is a file path.
func fileLoader(_ context.Context, key string) (any, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// New builds a cachedsource module from its block. Arguments:
//
//	source (string, required)  backing key, a file path under the default
//	                           loader
//	loader (string, optional)  named host-supplied loader to use instead
//	ttl_s  (number, optional)  entry TTL; falls back to the pipeline-wide
//	                           cache_ttl_s
//
// The block-level cache_scope attribute decides whether entries are shared
// across inputs or partitioned per input fingerprint.
func New(blk *config.ModuleBlock, deps producers.Deps) (module.Module, error) {
	source, err := producers.StringArg(blk, "source")
	if err != nil {
		return nil, err
	}
	loaderName, err := producers.OptionalStringArg(blk, "loader", "")
	if err != nil {
		return nil, err
	}
	ttlSeconds, err := producers.OptionalIntArg(blk, "ttl_s", 0)
	if err != nil {
		return nil, err
	}
	scope, err := cache.ParseScope(blk.CacheScope)
	if err != nil {
		return nil, err
	}

	loader := cache.Loader(fileLoader)
	if loaderName != "" {
		named, ok := deps.Loaders[loaderName]
		if !ok {
			return nil, fmt.Errorf("unknown loader %q", loaderName)
		}
		loader = named
	}

	ttl := deps.DefaultTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	store := deps.Cache
	if store == nil {
		store = cache.Default()
	}

	return &module.Func{
		Name:      blk.Name,
		DependsOn: blk.DependsOn,
		Rank:      blk.Priority,
		Fn: func(ctx context.Context, input *module.Input, bb blackboard.Reader) (*module.Output, error) {
			key := scope.Key(source, input.Fingerprint())
			v, err := store.GetOrLoad(ctx, key, ttl, loader)
			if err != nil {
				return nil, err
			}
			content, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("loader for %q returned %T, want string", key, v)
			}
			return &module.Output{
				Content:  strings.TrimRight(content, "\n"),
				Metadata: map[string]string{"cache_key": key},
			}, nil
		},
	}, nil
}
