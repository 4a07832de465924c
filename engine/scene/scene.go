package scene

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/mesh_instance"
	"github.com/Carmen-Shannon/polygon/engine/renderer"
	"github.com/Carmen-Shannon/polygon/engine/renderer/material"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// Scene is the registry that owns every anchor, mesh instance, shared material, camera and light,
// and draws them through its Renderer. Callers only ever hold handles; stale handles resolve to
// nothing instead of failing.
// Thread-safe for concurrent access, but objects returned by the *Mut accessors are live and must
// only be mutated from the goroutine driving Draw.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Renderer returns the renderer the scene draws with.
	Renderer() renderer.Renderer

	// Library returns the shader library materials are resolved against.
	Library() shader.Library

	// RegisterMesh uploads geometry to the renderer.
	//
	// Parameters:
	//   - m: the mesh to upload
	//
	// Returns:
	//   - handle.Mesh: the handle, drawable as soon as this returns
	//   - error: error if the upload fails
	RegisterMesh(m *mesh.Mesh) (handle.Mesh, error)

	// RegisterTexture uploads a texture to the renderer.
	//
	// Parameters:
	//   - t: the texture to upload
	//
	// Returns:
	//   - handle.Texture: the handle, bindable as soon as this returns
	//   - error: error if the upload fails
	RegisterTexture(t *texture.Texture2D) (handle.Texture, error)

	// DefaultMaterial creates a material bound to the library's default shader.
	//
	// Returns:
	//   - material.Material: a new material with no overrides
	DefaultMaterial() material.Material

	// BuildMaterial resolves a material source against the scene's shader library.
	//
	// Parameters:
	//   - src: the parsed material source
	//
	// Returns:
	//   - material.Material: the built material
	//   - error: a *material.MaterialBuildError if the source cannot be satisfied
	BuildMaterial(src material.MaterialSource) (material.Material, error)

	// RegisterAnchor adds an anchor to the scene.
	//
	// Parameters:
	//   - a: the anchor value
	//
	// Returns:
	//   - handle.Anchor: the anchor's handle
	RegisterAnchor(a anchor.Anchor) handle.Anchor

	// UnregisterAnchor removes an anchor. Everything attached to it stops resolving.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - anchor.Anchor: the removed anchor
	//   - bool: false if h was not live
	UnregisterAnchor(h handle.Anchor) (anchor.Anchor, bool)

	// Anchor returns a copy of a registered anchor.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - anchor.Anchor: the anchor value
	//   - bool: false if h is not live
	Anchor(h handle.Anchor) (anchor.Anchor, bool)

	// AnchorMut returns the stored anchor for in-place mutation.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - *anchor.Anchor: the stored anchor, or nil
	//   - bool: false if h is not live
	AnchorMut(h handle.Anchor) (*anchor.Anchor, bool)

	// WorldTransform resolves an anchor's world transform, composing its parent chain.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - [16]float32: the column-major world transform
	//   - bool: false if h or any ancestor does not resolve
	WorldTransform(h handle.Anchor) ([16]float32, bool)

	// RegisterMeshInstance adds a mesh instance to the draw list. Instances are drawn in
	// registration order. Registering an instance that is already live returns its existing
	// handle and leaves the draw order unchanged.
	//
	// Parameters:
	//   - mi: the instance to register
	//
	// Returns:
	//   - handle.MeshInstance: the instance's handle
	RegisterMeshInstance(mi mesh_instance.MeshInstance) handle.MeshInstance

	// RemoveMeshInstance removes an instance from the draw list and hands it back unchanged,
	// so it can be registered again later.
	//
	// Parameters:
	//   - h: the instance handle
	//
	// Returns:
	//   - mesh_instance.MeshInstance: the removed instance
	//   - bool: false if h was not live
	RemoveMeshInstance(h handle.MeshInstance) (mesh_instance.MeshInstance, bool)

	// MeshInstance returns a registered instance for reading.
	//
	// Parameters:
	//   - h: the instance handle
	//
	// Returns:
	//   - mesh_instance.MeshInstance: the instance
	//   - bool: false if h is not live
	MeshInstance(h handle.MeshInstance) (mesh_instance.MeshInstance, bool)

	// MeshInstanceMut returns a registered instance for mutation.
	//
	// Parameters:
	//   - h: the instance handle
	//
	// Returns:
	//   - mesh_instance.MeshInstance: the live instance
	//   - bool: false if h is not live
	MeshInstanceMut(h handle.MeshInstance) (mesh_instance.MeshInstance, bool)

	// MeshInstanceCount returns the number of registered mesh instances.
	MeshInstanceCount() int

	// RegisterMaterial adds a material that several instances can share.
	//
	// Parameters:
	//   - m: the material
	//
	// Returns:
	//   - handle.Material: the material's handle
	RegisterMaterial(m material.Material) handle.Material

	// MaterialMut returns a shared material for mutation. Changes are seen by every instance
	// sharing it.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - material.Material: the live material
	//   - bool: false if h is not live
	MaterialMut(h handle.Material) (material.Material, bool)

	// RemoveMaterial removes a shared material. Instances still referring to it are skipped.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - material.Material: the removed material
	//   - bool: false if h was not live
	RemoveMaterial(h handle.Material) (material.Material, bool)

	// RegisterCamera adds a camera. The most recently registered camera becomes active unless
	// another camera has been pinned with SetActiveCamera.
	//
	// Parameters:
	//   - c: the camera
	//
	// Returns:
	//   - handle.Camera: the camera's handle
	RegisterCamera(c camera.Camera) handle.Camera

	// RemoveCamera removes a camera.
	//
	// Parameters:
	//   - h: the camera handle
	//
	// Returns:
	//   - camera.Camera: the removed camera
	//   - bool: false if h was not live
	RemoveCamera(h handle.Camera) (camera.Camera, bool)

	// CameraMut returns a registered camera for mutation.
	//
	// Parameters:
	//   - h: the camera handle
	//
	// Returns:
	//   - camera.Camera: the live camera
	//   - bool: false if h is not live
	CameraMut(h handle.Camera) (camera.Camera, bool)

	// ActiveCamera returns the camera that drives the next frame: the pinned camera if it is
	// still live, otherwise the most recently registered live camera.
	//
	// Returns:
	//   - handle.Camera: the active camera's handle
	//   - bool: false if no camera is registered
	ActiveCamera() (handle.Camera, bool)

	// SetActiveCamera pins a camera as active regardless of registration order.
	//
	// Parameters:
	//   - h: the camera handle
	//
	// Returns:
	//   - bool: false if h is not live, in which case nothing changes
	SetActiveCamera(h handle.Camera) bool

	// RegisterLight adds a light. Every registered, enabled light contributes to shading.
	//
	// Parameters:
	//   - l: the light
	//
	// Returns:
	//   - handle.Light: the light's handle
	RegisterLight(l light.Light) handle.Light

	// RemoveLight removes a light.
	//
	// Parameters:
	//   - h: the light handle
	//
	// Returns:
	//   - light.Light: the removed light
	//   - bool: false if h was not live
	RemoveLight(h handle.Light) (light.Light, bool)

	// LightMut returns a registered light for mutation.
	//
	// Parameters:
	//   - h: the light handle
	//
	// Returns:
	//   - light.Light: the live light
	//   - bool: false if h is not live
	LightMut(h handle.Light) (light.Light, bool)

	// LightCount returns the number of registered lights.
	LightCount() int

	// AmbientLight returns the ambient light color.
	AmbientLight() common.Color

	// SetAmbientLight sets the ambient light color applied to every lit surface.
	//
	// Parameters:
	//   - c: the ambient color
	SetAmbientLight(c common.Color)

	// CullingDisabled returns whether instances outside the camera frustum are still drawn.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables CPU frustum culling.
	//
	// Parameters:
	//   - disabled: true to draw every instance regardless of visibility
	SetCullingDisabled(disabled bool)

	// Draw renders one frame: every live mesh instance is drawn from the active camera's point
	// of view, then the frame is presented. Instances that cannot be resolved are skipped and
	// counted in the frame's stats. Without a usable camera an empty frame is presented.
	//
	// Returns:
	//   - error: error if the frame cannot be started or submitted
	Draw() error

	// LastFrameStats returns the statistics of the most recent Draw.
	LastFrameStats() FrameStats

	// Clear removes every registered anchor, instance, material, camera and light. Every handle
	// issued so far becomes stale. GPU meshes and textures stay registered with the renderer.
	Clear()

	// Release clears the scene and stops its transform workers, then releases the renderer
	// along with every GPU resource it holds. Calling Release again only repeats the clear.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name    string
	r       renderer.Renderer
	library shader.Library

	anchors   anchor.Store
	instances *handle.Arena[handle.MeshInstance, mesh_instance.MeshInstance]
	materials *handle.Arena[handle.Material, material.Material]
	cameras   *handle.Arena[handle.Camera, camera.Camera]
	lights    *handle.Arena[handle.Light, light.Light]

	// registered maps each live instance back to its handle so one object never holds two.
	registered map[mesh_instance.MeshInstance]handle.MeshInstance

	pinnedCamera    handle.Camera
	ambient         common.Color
	cullingDisabled bool

	lastStats atomic.Pointer[FrameStats]

	// Reused across frames to avoid per-frame allocations.
	resolved  []resolvedInstance
	gpuLights []light.GPULight

	// transformPool resolves world transforms in parallel during Draw. Workers persist across
	// frames; a WaitGroup provides the per-frame barrier.
	transformPool    worker.DynamicWorkerPool
	transformWorkers int
}

var _ Scene = &scene{}

// NewScene creates an empty Scene drawing through r. NewScene panics if r is nil.
//
// Parameters:
//   - r: the renderer to draw with (must not be nil)
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:               &sync.RWMutex{},
		name:             "scene",
		r:                r,
		anchors:          anchor.NewStore(),
		instances:        handle.NewArena[handle.MeshInstance, mesh_instance.MeshInstance](),
		materials:        handle.NewArena[handle.Material, material.Material](),
		cameras:          handle.NewArena[handle.Camera, camera.Camera](),
		lights:           handle.NewArena[handle.Light, light.Light](),
		registered:       make(map[mesh_instance.MeshInstance]handle.MeshInstance),
		ambient:          common.ColorBlack,
		transformWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	if s.library == nil {
		s.library = shader.NewLibrary()
	}

	// Initialize the pool after options so WithTransformWorkers can override the default.
	s.transformPool = worker.NewDynamicWorkerPool(s.transformWorkers, 256, 1*time.Second)
	s.lastStats.Store(&FrameStats{})

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Library() shader.Library {
	return s.library
}

func (s *scene) RegisterMesh(m *mesh.Mesh) (handle.Mesh, error) {
	return s.r.RegisterMesh(m)
}

func (s *scene) RegisterTexture(t *texture.Texture2D) (handle.Texture, error) {
	return s.r.RegisterTexture(t)
}

func (s *scene) DefaultMaterial() material.Material {
	return material.Default(s.library)
}

func (s *scene) BuildMaterial(src material.MaterialSource) (material.Material, error) {
	return material.Build(s.library, src)
}

func (s *scene) RegisterAnchor(a anchor.Anchor) handle.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchors.Register(a)
}

func (s *scene) UnregisterAnchor(h handle.Anchor) (anchor.Anchor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchors.Unregister(h)
}

func (s *scene) Anchor(h handle.Anchor) (anchor.Anchor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchors.Get(h)
}

func (s *scene) AnchorMut(h handle.Anchor) (*anchor.Anchor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchors.GetMut(h)
}

func (s *scene) WorldTransform(h handle.Anchor) ([16]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchors.WorldTransform(h)
}

func (s *scene) RegisterMeshInstance(mi mesh_instance.MeshInstance) handle.MeshInstance {
	if mi == nil {
		panic("scene: RegisterMeshInstance requires a non-nil MeshInstance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.registered[mi]; ok {
		return h
	}
	h := s.instances.Insert(mi)
	s.registered[mi] = h
	return h
}

func (s *scene) RemoveMeshInstance(h handle.MeshInstance) (mesh_instance.MeshInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mi, ok := s.instances.Remove(h)
	if ok {
		delete(s.registered, mi)
	}
	return mi, ok
}

func (s *scene) MeshInstance(h handle.MeshInstance) (mesh_instance.MeshInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances.Get(h)
}

func (s *scene) MeshInstanceMut(h handle.MeshInstance) (mesh_instance.MeshInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances.Get(h)
}

func (s *scene) MeshInstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances.Len()
}

func (s *scene) RegisterMaterial(m material.Material) handle.Material {
	if m == nil {
		panic("scene: RegisterMaterial requires a non-nil Material")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.Insert(m)
}

func (s *scene) MaterialMut(h handle.Material) (material.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.Get(h)
}

func (s *scene) RemoveMaterial(h handle.Material) (material.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.Remove(h)
}

func (s *scene) RegisterCamera(c camera.Camera) handle.Camera {
	if c == nil {
		panic("scene: RegisterCamera requires a non-nil Camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameras.Insert(c)
}

func (s *scene) RemoveCamera(h handle.Camera) (camera.Camera, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cameras.Remove(h)
	if ok && h == s.pinnedCamera {
		s.pinnedCamera = 0
	}
	return c, ok
}

func (s *scene) CameraMut(h handle.Camera) (camera.Camera, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameras.Get(h)
}

func (s *scene) ActiveCamera() (handle.Camera, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCamera()
}

func (s *scene) SetActiveCamera(h handle.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cameras.Contains(h) {
		return false
	}
	s.pinnedCamera = h
	return true
}

// activeCamera must be called with s.mu held.
func (s *scene) activeCamera() (handle.Camera, bool) {
	if s.cameras.Contains(s.pinnedCamera) {
		return s.pinnedCamera, true
	}
	return s.cameras.Last()
}

func (s *scene) RegisterLight(l light.Light) handle.Light {
	if l == nil {
		panic("scene: RegisterLight requires a non-nil Light")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lights.Insert(l)
}

func (s *scene) RemoveLight(h handle.Light) (light.Light, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lights.Remove(h)
}

func (s *scene) LightMut(h handle.Light) (light.Light, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lights.Get(h)
}

func (s *scene) LightCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights.Len()
}

func (s *scene) AmbientLight() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *scene) SetAmbientLight(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = c
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) LastFrameStats() FrameStats {
	return *s.lastStats.Load()
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors.Clear()
	s.instances.Clear()
	clear(s.registered)
	s.materials.Clear()
	s.cameras.Clear()
	s.lights.Clear()
	s.pinnedCamera = 0
}

func (s *scene) Release() {
	s.Clear()
	s.mu.Lock()
	pool := s.transformPool
	s.transformPool = nil
	s.mu.Unlock()
	common.StopWorkerPool(pool, s.transformWorkers)
	s.r.Release()
}

// resolvedInstance is one mesh instance after the parallel resolve phase of Draw.
type resolvedInstance struct {
	handle   handle.MeshInstance
	instance mesh_instance.MeshInstance
	world    [16]float32
	skip     skipReason
}

// skipReason records why an instance produced no draw call.
type skipReason int

const (
	skipNone skipReason = iota
	skipDisabled
	skipAnchor
	skipMesh
	skipMaterial
	skipCulled
)

func (s *scene) Draw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FrameStats{Instances: s.instances.Len()}
	defer func() { s.lastStats.Store(&stats) }()

	uniforms := renderer.FrameUniforms{Ambient: s.ambient}

	camHandle, hasCamera := s.activeCamera()
	var viewProj [16]float32
	viewOK := false
	if hasCamera {
		cam, _ := s.cameras.Get(camHandle)
		var camWorld [16]float32
		viewProj, camWorld, viewOK = s.resolveView(cam)
		if viewOK {
			stats.Camera = camHandle
			uniforms.Camera = camera.NewGPUCameraUniform(viewProj, camWorld)
		}
	}

	if !viewOK {
		// No usable camera: still clear and present so the surface does not go stale.
		stats.EmptyFrame = true
		if err := s.r.BeginFrame(uniforms); err != nil {
			return fmt.Errorf("scene: failed to begin frame: %w", err)
		}
		if err := s.r.EndFrame(); err != nil {
			return fmt.Errorf("scene: failed to end frame: %w", err)
		}
		s.r.Present()
		return nil
	}

	uniforms.Lights = s.resolveLights()
	stats.Lights = len(uniforms.Lights)

	s.resolveInstances(viewProj)

	if err := s.r.BeginFrame(uniforms); err != nil {
		return fmt.Errorf("scene: failed to begin frame: %w", err)
	}

	for i := range s.resolved {
		ri := &s.resolved[i]
		if ri.skip != skipNone {
			stats.count(ri.skip)
			continue
		}

		mat, ok := s.instanceMaterial(ri.instance)
		if !ok {
			stats.count(skipMaterial)
			continue
		}

		err := s.r.Draw(renderer.DrawCommand{
			Mesh:      ri.instance.Mesh(),
			Shader:    mat.Shader(),
			Transform: anchor.NewGPUTransform(ri.world, viewProj),
			Params:    mat.Pack(),
			Textures:  mat.TextureBindings(),
		})
		switch {
		case err == nil:
			stats.Drawn++
		case errors.Is(err, renderer.ErrUnknownMesh):
			stats.count(skipMesh)
		case errors.Is(err, renderer.ErrNoFrame), errors.Is(err, renderer.ErrReleased):
			return fmt.Errorf("scene: draw of %s aborted the frame: %w", ri.handle, err)
		default:
			stats.Failed++
			stats.LastError = fmt.Errorf("scene: draw of %s failed: %w", ri.handle, err)
		}
	}

	if err := s.r.EndFrame(); err != nil {
		return fmt.Errorf("scene: failed to end frame: %w", err)
	}
	s.r.Present()

	if stats.Failed > 0 && s.LastFrameStats().Failed == 0 {
		log.Printf("[Scene] %s: %d draw(s) failed, last error: %v", s.name, stats.Failed, stats.LastError)
	}
	return nil
}

// resolveView computes the camera's projection * view matrix and world transform.
// Must be called with s.mu held.
func (s *scene) resolveView(cam camera.Camera) ([16]float32, [16]float32, bool) {
	var viewProj, world [16]float32
	ah, ok := cam.Anchor()
	if !ok {
		return viewProj, world, false
	}
	world, ok = s.anchors.WorldTransform(ah)
	if !ok {
		return viewProj, world, false
	}
	view, ok := camera.ViewMatrix(world)
	if !ok {
		return viewProj, world, false
	}
	proj := cam.ProjectionMatrix(s.r.SurfaceAspect())
	common.Mul4(viewProj[:], proj[:], view[:])
	return viewProj, world, true
}

// resolveLights converts every enabled light into its GPU form. Anchored light types whose anchor
// does not resolve are left out. Must be called with s.mu held.
func (s *scene) resolveLights() []light.GPULight {
	s.gpuLights = s.gpuLights[:0]
	s.lights.Each(func(_ handle.Light, l light.Light) bool {
		if !l.Enabled() {
			return true
		}
		var pos [3]float32
		if ah, ok := l.Anchor(); ok {
			world, ok := s.anchors.WorldTransform(ah)
			if ok {
				pos = [3]float32{world[12], world[13], world[14]}
			} else if light.NeedsAnchor(l.Type()) {
				return true
			}
		} else if light.NeedsAnchor(l.Type()) {
			return true
		}
		s.gpuLights = append(s.gpuLights, light.ToGPULight(l, pos))
		return len(s.gpuLights) < light.MaxGPULights
	})
	return s.gpuLights
}

// resolveInstances fills s.resolved with every live instance in registration order, resolving
// world transforms and frustum visibility on the transform pool. Must be called with s.mu held.
func (s *scene) resolveInstances(viewProj [16]float32) {
	s.resolved = s.resolved[:0]
	s.instances.Each(func(h handle.MeshInstance, mi mesh_instance.MeshInstance) bool {
		s.resolved = append(s.resolved, resolvedInstance{handle: h, instance: mi})
		return true
	})
	if len(s.resolved) == 0 {
		return
	}

	var frustum *common.Frustum
	if !s.cullingDisabled {
		f := common.ExtractFrustumFromMatrix(viewProj[:])
		frustum = &f
	}

	// Released scenes have no pool left.
	if s.transformPool == nil {
		for i := range s.resolved {
			s.resolveInstance(&s.resolved[i], frustum)
		}
		return
	}

	chunk := (len(s.resolved) + s.transformWorkers - 1) / s.transformWorkers
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(s.resolved); start += chunk {
		batch := s.resolved[start:min(start+chunk, len(s.resolved))]
		wg.Add(1)
		id := taskID
		taskID++
		s.transformPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := range batch {
					s.resolveInstance(&batch[i], frustum)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// resolveInstance only reads shared state, so it is safe to run on several workers at once.
func (s *scene) resolveInstance(ri *resolvedInstance, frustum *common.Frustum) {
	mi := ri.instance
	if !mi.Enabled() {
		ri.skip = skipDisabled
		return
	}
	ah, ok := mi.Anchor()
	if !ok {
		ri.skip = skipAnchor
		return
	}
	world, ok := s.anchors.WorldTransform(ah)
	if !ok {
		ri.skip = skipAnchor
		return
	}
	ri.world = world

	center, radius, ok := s.r.MeshBounds(mi.Mesh())
	if !ok {
		ri.skip = skipMesh
		return
	}
	if frustum != nil {
		worldCenter := common.TransformPoint(world[:], center)
		if !frustum.SphereVisible(worldCenter, radius*maxScale(world)) {
			ri.skip = skipCulled
		}
	}
}

// instanceMaterial resolves the material an instance is shaded with. Must be called with s.mu held.
func (s *scene) instanceMaterial(mi mesh_instance.MeshInstance) (material.Material, bool) {
	if h, ok := mi.SharedMaterial(); ok {
		return s.materials.Get(h)
	}
	m := mi.Material()
	return m, m != nil
}

// maxScale returns the largest axis scale of a TRS matrix, used to grow bounding spheres.
func maxScale(m [16]float32) float32 {
	sx := common.Length3([3]float32{m[0], m[1], m[2]})
	sy := common.Length3([3]float32{m[4], m[5], m[6]})
	sz := common.Length3([3]float32{m[8], m[9], m[10]})
	return max(sx, sy, sz)
}
