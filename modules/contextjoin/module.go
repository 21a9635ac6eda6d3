// Package contextjoin provides a producer that joins blackboard values
// published by earlier batches into one content block.
package contextjoin

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/producers"
)

// Kind is the producer kind label used in pipeline definitions.
const Kind = "contextjoin"

// Register binds the producer factory into the registry.
func Register(r *producers.Registry) {
	r.Register(Kind, New)
}

// New builds a contextjoin module from its block. Arguments:
//
//	keys   (list of string, required)  blackboard keys to read, in order
//	header (string, optional)          prepended line when any key resolved
//
// Keys are only visible when their owners ran in strictly earlier batches,
// so a contextjoin module must declare those owners in depends_on.
func New(blk *config.ModuleBlock, _ producers.Deps) (module.Module, error) {
	keys, err := producers.StringListArg(blk, "keys")
	if err != nil {
		return nil, err
	}
	header, err := producers.OptionalStringArg(blk, "header", "")
	if err != nil {
		return nil, err
	}

	return &module.Func{
		Name:      blk.Name,
		DependsOn: blk.DependsOn,
		Rank:      blk.Priority,
		Fn: func(ctx context.Context, input *module.Input, bb blackboard.Reader) (*module.Output, error) {
			var parts []string
			for _, key := range keys {
				v, ok := bb.Get(key)
				if !ok {
					continue
				}
				parts = append(parts, fmt.Sprintf("%v", v))
			}
			if len(parts) == 0 {
				return &module.Output{}, nil
			}
			if header != "" {
				parts = append([]string{header}, parts...)
			}
			return &module.Output{
				Content:  strings.Join(parts, "\n"),
				Metadata: map[string]string{"joined_keys": fmt.Sprintf("%d", len(parts))},
			}, nil
		},
	}, nil
}
