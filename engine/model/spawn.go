package model

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/mesh_instance"
	"github.com/Carmen-Shannon/polygon/engine/renderer/material"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
	"github.com/Carmen-Shannon/polygon/engine/scene"
)

const (
	propSurfaceColor     = "surface_color"
	propSurfaceDiffuse   = "surface_diffuse"
	propSurfaceShininess = "surface_shininess"
)

// Spawned records everything Spawn registered so Despawn can remove it again.
type Spawned struct {
	// Anchors holds one anchor per model node, in node order.
	Anchors []handle.Anchor

	Instances []handle.MeshInstance
	Materials []handle.Material
	Meshes    []handle.Mesh
	Textures  []handle.Texture
}

// Spawn registers a model into a scene. Each node becomes an anchor parented like the node, each
// mesh primitive is uploaded once, each material becomes one shared material, and every primitive
// a node draws becomes a mesh instance on that node's anchor. If any step fails, everything
// registered so far is removed again.
//
// Parameters:
//   - s: the scene to register into
//   - m: the model to spawn
//   - options: functional options for spawning
//
// Returns:
//   - *Spawned: the handles of everything registered
//   - error: an error if the model is inconsistent, a shader is missing, or an upload fails
func Spawn(s scene.Scene, m *Model, options ...SpawnOption) (*Spawned, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultSpawnConfig()
	for _, opt := range options {
		opt(cfg)
	}

	out := &Spawned{}
	fail := func(err error) (*Spawned, error) {
		Despawn(s, out)
		return nil, fmt.Errorf("model %q: %w", m.Name, err)
	}

	materials := make([]handle.Material, len(m.Materials))
	for i, md := range m.Materials {
		mat, err := spawnMaterial(s, cfg, md, out)
		if err != nil {
			return fail(fmt.Errorf("material %d (%s): %w", i, md.Name, err))
		}
		materials[i] = s.RegisterMaterial(mat)
		out.Materials = append(out.Materials, materials[i])
	}

	meshes := make([][]handle.Mesh, len(m.Meshes))
	for i, mesh := range m.Meshes {
		for j, prim := range mesh.Primitives {
			h, err := s.RegisterMesh(prim.Mesh)
			if err != nil {
				return fail(fmt.Errorf("mesh %d (%s) primitive %d: %w", i, mesh.Name, j, err))
			}
			meshes[i] = append(meshes[i], h)
			out.Meshes = append(out.Meshes, h)
		}
	}

	var fallback handle.Material
	hasFallback := false

	out.Anchors = make([]handle.Anchor, 0, len(m.Nodes))
	for _, node := range m.Nodes {
		opts := []anchor.AnchorBuilderOption{
			anchor.WithPosition(node.Transform.Translation),
			anchor.WithOrientation(node.Transform.Rotation),
			anchor.WithScale(node.Transform.Scale),
		}
		switch {
		case node.Parent >= 0:
			opts = append(opts, anchor.WithParent(out.Anchors[node.Parent]))
		case cfg.hasRoot:
			opts = append(opts, anchor.WithParent(cfg.root))
		}
		ah := s.RegisterAnchor(anchor.New(opts...))
		out.Anchors = append(out.Anchors, ah)

		if node.MeshIndex < 0 {
			continue
		}
		for j, prim := range m.Meshes[node.MeshIndex].Primitives {
			var mh handle.Material
			if prim.MaterialIndex >= 0 {
				mh = materials[prim.MaterialIndex]
			} else {
				if !hasFallback {
					mat, err := spawnMaterial(s, cfg, MaterialData{Name: "default", BaseColor: common.ColorWhite}, out)
					if err != nil {
						return fail(fmt.Errorf("default material: %w", err))
					}
					fallback = s.RegisterMaterial(mat)
					out.Materials = append(out.Materials, fallback)
					hasFallback = true
				}
				mh = fallback
			}
			ih := s.RegisterMeshInstance(mesh_instance.WithSharedMaterial(
				meshes[node.MeshIndex][j],
				mh,
				mesh_instance.WithAnchor(ah),
				mesh_instance.WithEnabled(!cfg.disabled),
			))
			out.Instances = append(out.Instances, ih)
		}
	}

	log.Printf("[Model] spawned %q: %d nodes, %d instances, %d materials", m.Name, len(out.Anchors), len(out.Instances), len(out.Materials))
	return out, nil
}

// Despawn removes everything a Spawn call registered, including the uploaded meshes and textures.
// Handles that are already gone are ignored.
//
// Parameters:
//   - s: the scene the model was spawned into
//   - sp: the result of Spawn
func Despawn(s scene.Scene, sp *Spawned) {
	if sp == nil {
		return
	}
	for _, h := range sp.Instances {
		s.RemoveMeshInstance(h)
	}
	for _, h := range sp.Materials {
		s.RemoveMaterial(h)
	}
	for i := len(sp.Anchors) - 1; i >= 0; i-- {
		s.UnregisterAnchor(sp.Anchors[i])
	}
	r := s.Renderer()
	for _, h := range sp.Meshes {
		r.UnregisterMesh(h)
	}
	for _, h := range sp.Textures {
		r.UnregisterTexture(h)
	}
	*sp = Spawned{}
}

// spawnMaterial uploads the material's texture, if any, and builds a material on the configured
// plain or textured shader.
func spawnMaterial(s scene.Scene, cfg *spawnConfig, md MaterialData, out *Spawned) (material.Material, error) {
	key := cfg.plainShader
	if md.BaseColorTexture != nil {
		key = cfg.texturedShader
	}
	sh, ok := s.Library().Shader(key)
	if !ok {
		return nil, fmt.Errorf("unknown shader %q", key)
	}

	opts := []material.MaterialBuilderOption{
		material.WithLabel(md.Name),
		material.WithColor(propSurfaceColor, md.BaseColor),
	}
	if md.BaseColorTexture != nil {
		th, err := s.RegisterTexture(md.BaseColorTexture)
		if err != nil {
			return nil, err
		}
		out.Textures = append(out.Textures, th)
		opts = append(opts, material.WithTexture(propSurfaceDiffuse, th))
	}
	if md.Shininess > 0 && hasF32(sh, propSurfaceShininess) {
		opts = append(opts, material.WithF32(propSurfaceShininess, md.Shininess))
	}
	return material.New(sh, opts...)
}

func hasF32(sh shader.Shader, name string) bool {
	p, ok := sh.Property(name)
	return ok && p.Kind == shader.PropertyKindF32
}
