package model

import (
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

// SpawnOption is a functional option for configuring Spawn.
type SpawnOption func(*spawnConfig)

type spawnConfig struct {
	root           handle.Anchor
	hasRoot        bool
	plainShader    string
	texturedShader string
	disabled       bool
}

func defaultSpawnConfig() *spawnConfig {
	return &spawnConfig{
		plainShader:    shader.KeyDiffuseLit,
		texturedShader: shader.KeyTextureDiffuseLit,
	}
}

// WithRootAnchor parents every root node of the model to an existing anchor, so the whole
// model moves with it.
//
// Parameters:
//   - h: the anchor the model hangs off
//
// Returns:
//   - SpawnOption: option function to apply
func WithRootAnchor(h handle.Anchor) SpawnOption {
	return func(c *spawnConfig) {
		c.root = h
		c.hasRoot = true
	}
}

// WithShaders overrides the shader keys spawned materials bind to. The plain shader must declare
// a surface_color property; the textured shader must additionally declare a surface_diffuse texture.
//
// Parameters:
//   - plain: shader key for materials without a base color texture
//   - textured: shader key for materials with one
//
// Returns:
//   - SpawnOption: option function to apply
func WithShaders(plain, textured string) SpawnOption {
	return func(c *spawnConfig) {
		if plain != "" {
			c.plainShader = plain
		}
		if textured != "" {
			c.texturedShader = textured
		}
	}
}

// WithDisabled spawns every mesh instance disabled.
//
// Parameters:
//   - disabled: if true, instances are skipped by the draw pipeline until enabled
//
// Returns:
//   - SpawnOption: option function to apply
func WithDisabled(disabled bool) SpawnOption {
	return func(c *spawnConfig) {
		c.disabled = disabled
	}
}
