package renderer

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/polygon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// Bindings inside the frame and draw groups.
const (
	bindingCamera    = 0
	bindingLights    = 1
	bindingTransform = 0
	bindingMaterial  = 1

	// texture providers keep their texture at 0 and sampler at 1
	bindingTexture = 0
	bindingSampler = 1
)

type wgpuRendererBackend struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor
	surfaceWidth         int
	surfaceHeight        int

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  common.Color

	// Layouts shared by every pipeline. The texture layout and the pipeline layout depend only
	// on the number of texture properties of a shader, so they are cached by that count.
	frameLayout     *wgpu.BindGroupLayout
	drawLayout      *wgpu.BindGroupLayout
	textureLayouts  map[int]*wgpu.BindGroupLayout
	pipelineLayouts map[int]*wgpu.PipelineLayout

	meshes         map[handle.Mesh]bind_group_provider.BindGroupProvider
	textures       map[handle.Texture]bind_group_provider.BindGroupProvider
	defaultTexture bind_group_provider.BindGroupProvider
	textureGroups  map[string]bind_group_provider.BindGroupProvider

	// frameGroup holds the camera uniform and light buffer. drawGroups is a pool of transform and
	// material uniforms; every draw of a frame needs its own pair since queue writes land before
	// the command buffer executes.
	frameGroup bind_group_provider.BindGroupProvider
	drawGroups []bind_group_provider.BindGroupProvider
	drawIndex  int

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackend{
		mu:              &sync.Mutex{},
		presentMode:     wgpu.PresentModeImmediate,
		sampleCount:     sampleCount,
		clearColor:      defaultClearColor,
		textureLayouts:  make(map[int]*wgpu.BindGroupLayout),
		pipelineLayouts: make(map[int]*wgpu.PipelineLayout),
		meshes:          make(map[handle.Mesh]bind_group_provider.BindGroupProvider),
		textures:        make(map[handle.Texture]bind_group_provider.BindGroupProvider),
		textureGroups:   make(map[string]bind_group_provider.BindGroupProvider),
	}

	w.instance = wgpu.CreateInstance(nil)
	if w.instance == nil {
		return nil, &CreationError{Stage: StageInstance}
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)
	if w.surface == nil {
		w.instance.Release()
		return nil, &CreationError{Stage: StageSurface}
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.releaseInstance()
		return nil, &CreationError{Stage: StageAdapter, Err: err}
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		w.releaseInstance()
		return nil, &CreationError{Stage: StageDevice, Err: err}
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.initSharedResources(); err != nil {
		w.Release()
		return nil, &CreationError{Stage: StageTargets, Err: err}
	}
	return w, nil
}

// initSharedResources creates the layouts, frame uniforms and default texture used by every draw.
func (b *wgpuRendererBackend) initSharedResources() error {
	frameDesc := shader.FrameBindGroupLayoutDescriptor()
	layout, err := b.device.CreateBindGroupLayout(&frameDesc)
	if err != nil {
		return fmt.Errorf("frame bind group layout: %w", err)
	}
	b.frameLayout = layout

	drawDesc := shader.DrawBindGroupLayoutDescriptor()
	layout, err = b.device.CreateBindGroupLayout(&drawDesc)
	if err != nil {
		return fmt.Errorf("draw bind group layout: %w", err)
	}
	b.drawLayout = layout

	cam := camera.GPUCameraUniform{}
	b.frameGroup = bind_group_provider.NewBindGroupProvider("Frame")
	if err := b.initUniformGroup(b.frameGroup, b.frameLayout, map[int]int{
		bindingCamera: cam.Size(),
		bindingLights: light.LightBufferSize(light.MaxGPULights),
	}, map[int]wgpu.BufferUsage{
		bindingCamera: wgpu.BufferUsageUniform,
		bindingLights: wgpu.BufferUsageStorage,
	}); err != nil {
		return err
	}

	white, err := texture.NewTexture2D(1, 1, texture.FormatRGBA, []uint8{255, 255, 255, 255})
	if err != nil {
		return err
	}
	b.defaultTexture = bind_group_provider.NewBindGroupProvider("Default White")
	return b.initTexture(b.defaultTexture, white)
}

func (b *wgpuRendererBackend) releaseInstance() {
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A minimized window reports a zero size; keep the previous targets until it is restored.
	if width <= 0 || height <= 0 {
		return
	}
	b.surfaceWidth, b.surfaceHeight = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved result is written to the
		// swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is set per-frame to the
	// swapchain view. When disabled, View is set per-frame and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView,
				ResolveTarget: nil,
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    toWGPUColor(b.clearColor),
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackend) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackend) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = toWGPUColor(c)
	}
}

func (b *wgpuRendererBackend) UploadMesh(h handle.Mesh, m *mesh.Mesh) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider(h.String())
	vertexData, indexData := m.VertexBytes(), m.IndexBytes()

	vertex, err := b.createBuffer(provider.Label()+" Vertex Buffer", wgpu.BufferUsageVertex, vertexData)
	if err != nil {
		return err
	}
	index, err := b.createBuffer(provider.Label()+" Index Buffer", wgpu.BufferUsageIndex, indexData)
	if err != nil {
		vertex.Release()
		return err
	}
	provider.SetMeshBuffers(vertex, index, m.IndexCount())

	if old, ok := b.meshes[h]; ok {
		old.Release()
	}
	b.meshes[h] = provider
	return nil
}

func (b *wgpuRendererBackend) createBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

func (b *wgpuRendererBackend) ReleaseMesh(h handle.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.meshes[h]; ok {
		p.Release()
		delete(b.meshes, h)
	}
}

func (b *wgpuRendererBackend) UploadTexture(h handle.Texture, t *texture.Texture2D) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider(h.String())
	if err := b.initTexture(provider, t); err != nil {
		provider.Release()
		return err
	}
	if old, ok := b.textures[h]; ok {
		old.Release()
	}
	b.textures[h] = provider
	return nil
}

// initTexture uploads RGBA8 texels and creates the view and sampler stored on the provider.
func (b *wgpuRendererBackend) initTexture(provider bind_group_provider.BindGroupProvider, t *texture.Texture2D) error {
	staging := t.StagingData()
	size := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	provider.SetTexture(bindingTexture, tex, view)

	sampling := common.SamplerStagingData{}
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(sampling.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(sampling.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(sampling.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(sampling.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(sampling.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(sampling.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(sampling.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(sampling.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(sampling.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingSampler, samp)
	return nil
}

func (b *wgpuRendererBackend) ReleaseTexture(h handle.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.textures[h]
	if !ok {
		return
	}
	// cached texture groups may reference the released view
	for key, g := range b.textureGroups {
		g.Release()
		delete(b.textureGroups, key)
	}
	p.Release()
	delete(b.textures, h)
}

func (b *wgpuRendererBackend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return fmt.Errorf("surface not configured")
	}

	s := p.Shader()
	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	defer module.Release()

	layout, err := b.pipelineLayout(s.TextureCount())
	if err != nil {
		return err
	}

	colorTarget := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		colorTarget.Blend = p.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{shader.VertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

// pipelineLayout returns the cached layout for shaders with the given number of texture properties.
func (b *wgpuRendererBackend) pipelineLayout(textureCount int) (*wgpu.PipelineLayout, error) {
	if layout, ok := b.pipelineLayouts[textureCount]; ok {
		return layout, nil
	}
	groups := []*wgpu.BindGroupLayout{b.frameLayout, b.drawLayout}
	if textureCount > 0 {
		texLayout, err := b.textureLayout(textureCount)
		if err != nil {
			return nil, err
		}
		groups = append(groups, texLayout)
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("Pipeline Layout (%d textures)", textureCount),
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, err
	}
	b.pipelineLayouts[textureCount] = layout
	return layout, nil
}

func (b *wgpuRendererBackend) textureLayout(textureCount int) (*wgpu.BindGroupLayout, error) {
	if layout, ok := b.textureLayouts[textureCount]; ok {
		return layout, nil
	}
	desc := shader.TextureBindGroupLayoutDescriptor(textureCount)
	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, fmt.Errorf("texture bind group layout: %w", err)
	}
	b.textureLayouts[textureCount] = layout
	return layout, nil
}

// initUniformGroup creates one buffer per binding and a bind group over all of them.
func (b *wgpuRendererBackend) initUniformGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, sizes map[int]int, usages map[int]wgpu.BufferUsage) error {
	entries := make([]wgpu.BindGroupEntry, 0, len(sizes))
	for binding := 0; binding < len(sizes); binding++ {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
			Size:  uint64(sizes[binding]),
			Usage: usages[binding] | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(binding, buf)
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// drawGroup returns the i-th per-draw uniform group, growing the pool as needed.
func (b *wgpuRendererBackend) drawGroup(i int) (bind_group_provider.BindGroupProvider, error) {
	for len(b.drawGroups) <= i {
		tr := anchor.GPUTransform{}
		params := shader.GPUMaterialParams{}
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Draw %d", len(b.drawGroups)))
		if err := b.initUniformGroup(provider, b.drawLayout, map[int]int{
			bindingTransform: tr.Size(),
			bindingMaterial:  params.Size(),
		}, map[int]wgpu.BufferUsage{
			bindingTransform: wgpu.BufferUsageUniform,
			bindingMaterial:  wgpu.BufferUsageUniform,
		}); err != nil {
			provider.Release()
			return nil, err
		}
		b.drawGroups = append(b.drawGroups, provider)
	}
	return b.drawGroups[i], nil
}

// textureGroup returns the cached bind group binding the given textures in texture-index order.
// The zero handle and released handles bind the default white texture.
func (b *wgpuRendererBackend) textureGroup(textures []handle.Texture) (bind_group_provider.BindGroupProvider, error) {
	keyParts := make([]string, len(textures))
	for i, t := range textures {
		keyParts[i] = handle.ID(t).String()
	}
	key := strings.Join(keyParts, ",")
	if g, ok := b.textureGroups[key]; ok {
		return g, nil
	}

	layout, err := b.textureLayout(len(textures))
	if err != nil {
		return nil, err
	}
	entries := make([]wgpu.BindGroupEntry, 0, 2*len(textures))
	for i, t := range textures {
		src, ok := b.textures[t]
		if !ok {
			src = b.defaultTexture
		}
		prop := shader.Property{Kind: shader.PropertyKindTexture, TextureIndex: i}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: prop.TextureBinding(), TextureView: src.TextureView(bindingTexture)},
			wgpu.BindGroupEntry{Binding: prop.SamplerBinding(), Sampler: src.Sampler(bindingSampler)},
		)
	}

	provider := bind_group_provider.NewBindGroupProvider("Textures " + key)
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	provider.SetBindGroup(bindGroup)
	b.textureGroups[key] = provider
	return provider, nil
}

// writeBuffers writes staged buffer writes to the GPU queue.
func (b *wgpuRendererBackend) writeBuffers(writes []bind_group_provider.BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("%s binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackend) BeginFrame(frame FrameUniforms) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one would fail
	// with "Surface image is already acquired".
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.renderPassDescriptor == nil {
		return fmt.Errorf("surface not configured")
	}

	if err := b.writeBuffers([]bind_group_provider.BufferWrite{
		{Provider: b.frameGroup, Binding: bindingCamera, Data: frame.Camera.Marshal()},
		{Provider: b.frameGroup, Binding: bindingLights, Data: frame.LightBytes()},
	}); err != nil {
		return err
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetBindGroup(shader.GroupFrame, b.frameGroup.BindGroup(), nil)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.drawIndex = 0

	return nil
}

func (b *wgpuRendererBackend) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	meshProvider, ok := b.meshes[cmd.Mesh]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMesh, cmd.Mesh)
	}
	if p.RenderPipeline() == nil {
		return fmt.Errorf("pipeline %q has no GPU pipeline", p.PipelineKey())
	}

	drawGroup, err := b.drawGroup(b.drawIndex)
	if err != nil {
		return err
	}
	if err := b.writeBuffers([]bind_group_provider.BufferWrite{
		{Provider: drawGroup, Binding: bindingTransform, Data: cmd.Transform.Marshal()},
		{Provider: drawGroup, Binding: bindingMaterial, Data: cmd.Params.Marshal()},
	}); err != nil {
		return err
	}
	b.drawIndex++

	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetBindGroup(shader.GroupDraw, drawGroup.BindGroup(), nil)
	if len(cmd.Textures) > 0 {
		texGroup, err := b.textureGroup(cmd.Textures)
		if err != nil {
			return err
		}
		b.framePass.SetBindGroup(shader.GroupTextures, texGroup.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	return nil
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, p := range b.meshes {
		p.Release()
		delete(b.meshes, h)
	}
	for h, p := range b.textures {
		p.Release()
		delete(b.textures, h)
	}
	for key, g := range b.textureGroups {
		g.Release()
		delete(b.textureGroups, key)
	}
	for _, g := range b.drawGroups {
		g.Release()
	}
	b.drawGroups = nil
	for _, p := range []bind_group_provider.BindGroupProvider{b.frameGroup, b.defaultTexture} {
		if p != nil {
			p.Release()
		}
	}
	for n, l := range b.pipelineLayouts {
		l.Release()
		delete(b.pipelineLayouts, n)
	}
	for n, l := range b.textureLayouts {
		l.Release()
		delete(b.textureLayouts, n)
	}
	for _, l := range []*wgpu.BindGroupLayout{b.frameLayout, b.drawLayout} {
		if l != nil {
			l.Release()
		}
	}
	b.frameLayout, b.drawLayout = nil, nil

	b.releaseTargets()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	b.releaseInstance()
}

func toWGPUColor(c common.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
