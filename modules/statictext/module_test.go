package statictext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/textweave/internal/blackboard"
	"github.com/vk/textweave/internal/config"
	"github.com/vk/textweave/internal/module"
	"github.com/vk/textweave/internal/producers"
)

func block(args map[string]cty.Value) *config.ModuleBlock {
	return &config.ModuleBlock{Kind: Kind, Name: "intro", Args: args}
}

func TestNew_EmitsConfiguredText(t *testing.T) {
	m, err := New(block(map[string]cty.Value{
		"text": cty.StringVal("A fixed paragraph."),
	}), producers.Deps{})
	require.NoError(t, err)
	assert.Equal(t, "intro", m.ID())

	out, err := m.Produce(context.Background(), &module.Input{}, blackboard.New())
	require.NoError(t, err)
	assert.Equal(t, "A fixed paragraph.", out.Content)
	assert.Nil(t, out.SharedWrites)
}

func TestNew_ExpandsSubject(t *testing.T) {
	m, err := New(block(map[string]cty.Value{
		"text": cty.StringVal("All about {subject}."),
	}), producers.Deps{})
	require.NoError(t, err)

	out, err := m.Produce(context.Background(), &module.Input{Subject: "garbage collection"}, blackboard.New())
	require.NoError(t, err)
	assert.Equal(t, "All about garbage collection.", out.Content)
}

func TestNew_ShareKeyPublishesContent(t *testing.T) {
	m, err := New(block(map[string]cty.Value{
		"text":      cty.StringVal("shared body"),
		"share_key": cty.StringVal("intro_text"),
	}), producers.Deps{})
	require.NoError(t, err)

	out, err := m.Produce(context.Background(), &module.Input{}, blackboard.New())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"intro_text": "shared body"}, out.SharedWrites)
}

func TestNew_TextIsRequired(t *testing.T) {
	_, err := New(block(nil), producers.Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}

func TestRegister(t *testing.T) {
	r := producers.NewRegistry()
	Register(r)
	assert.Equal(t, 1, r.Kinds())
}
