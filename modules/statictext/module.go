// Package statictext provides the simplest content producer: it emits a
// configured block of text, optionally publishing it on the blackboard.
package statictext

import (
	"context"
	"strings"

	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/producers"
)

// Kind is the producer kind label used in pipeline definitions.
const Kind = "statictext"

// Register binds the producer factory into the registry.
func Register(r *producers.Registry) {
	r.Register(Kind, New)
}

// New builds a statictext module from its block. Arguments:
//
//	text      (string, required)  the content to emit; "{subject}" expands
//	                              to the run input's subject
//	share_key (string, optional)  blackboard key to publish the content on
func New(blk *config.ModuleBlock, _ producers.Deps) (module.Module, error) {
	text, err := producers.StringArg(blk, "text")
	if err != nil {
		return nil, err
	}
	shareKey, err := producers.OptionalStringArg(blk, "share_key", "")
	if err != nil {
		return nil, err
	}

	return &module.Func{
		Name:      blk.Name,
		DependsOn: blk.DependsOn,
		Rank:      blk.Priority,
		Fn: func(ctx context.Context, input *module.Input, bb blackboard.Reader) (*module.Output, error) {
			content := text
			if input != nil {
				content = strings.ReplaceAll(content, "{subject}", input.Subject)
			}
			out := &module.Output{Content: content}
			if shareKey != "" {
				out.SharedWrites = map[string]any{shareKey: content}
			}
			return out, nil
		},
	}, nil
}
