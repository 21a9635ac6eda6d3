package producers

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/textweave/internal/config"
)

// StringArg reads a required string argument from a module block.
func StringArg(blk *config.ModuleBlock, name string) (string, error) {
	v, ok := blk.Arg(name)
	if !ok {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return ctyString(name, v)
}

// OptionalStringArg reads an optional string argument, returning def when
// absent.
func OptionalStringArg(blk *config.ModuleBlock, name, def string) (string, error) {
	v, ok := blk.Arg(name)
	if !ok {
		return def, nil
	}
	return ctyString(name, v)
}

// OptionalIntArg reads an optional integer argument, returning def when
// absent.
func OptionalIntArg(blk *config.ModuleBlock, name string, def int) (int, error) {
	v, ok := blk.Arg(name)
	if !ok {
		return def, nil
	}
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("argument %q must be a number, got %s", name, v.Type().FriendlyName())
	}
	n, _ := v.AsBigFloat().Int64()
	return int(n), nil
}

// StringListArg reads a required list-of-strings argument.
func StringListArg(blk *config.ModuleBlock, name string) ([]string, error) {
	v, ok := blk.Arg(name)
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", name)
	}
	if !v.CanIterateElements() {
		return nil, fmt.Errorf("argument %q must be a list of strings, got %s", name, v.Type().FriendlyName())
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		s, err := ctyString(name, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func ctyString(name string, v cty.Value) (string, error) {
	if v.Type() != cty.String || v.IsNull() {
		return "", fmt.Errorf("argument %q must be a string, got %s", name, v.Type().FriendlyName())
	}
	return v.AsString(), nil
}
