package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	vertexEntryPattern   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	fragmentEntryPattern = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and material binding.
type shader struct {
	key              string
	source           string
	vertexEntry      string
	fragmentEntry    string
	properties       []Property
	propertyIndex    map[string]int
	textureCount     int
	uniformSlots     int
	module           *wgpu.ShaderModuleDescriptor
	bindGroupLayouts []wgpu.BindGroupLayoutDescriptor
}

// Shader defines the interface for a pre-processed WGSL render program. It exposes the shader's
// unique key, processed source code, entry points, declared material properties and the bind
// group layout descriptors needed for pipeline creation and material binding.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// Properties returns the declared material properties in declaration order.
	//
	// Returns:
	//   - []Property: a copy of the property declarations
	Properties() []Property

	// Property looks up a declared property by name.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - Property: the property declaration
	//   - bool: false if the shader does not declare the property
	Property(name string) (Property, bool)

	// TextureCount returns the number of texture properties.
	//
	// Returns:
	//   - int: the texture property count
	TextureCount() int

	// UniformSlots returns the number of material uniform slots in use.
	//
	// Returns:
	//   - int: the number of color and f32 properties
	UniformSlots() int

	// DefaultParams packs every property default into a material uniform.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform with all shader defaults applied
	DefaultParams() GPUMaterialParams

	// BindGroupLayoutDescriptors returns the layout descriptor of every bind group the shader
	// uses, indexed by group: frame, draw and, when the shader has textures, the texture group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: descriptors ordered by group index
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and extracts its entry points and property declarations.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the raw WGSL source with @polygon: annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if pre-processing fails or an entry point is missing
func NewShader(key, source string) (Shader, error) {
	if key == "" {
		return nil, fmt.Errorf("shader: key must not be empty")
	}
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process source: %w", key, err)
	}

	s := &shader{
		key:           key,
		source:        processed,
		properties:    append([]Property(nil), pp.Properties()...),
		propertyIndex: make(map[string]int),
	}

	vs := vertexEntryPattern.FindStringSubmatch(processed)
	if vs == nil {
		return nil, fmt.Errorf("shader %s: no @vertex entry point", key)
	}
	fs := fragmentEntryPattern.FindStringSubmatch(processed)
	if fs == nil {
		return nil, fmt.Errorf("shader %s: no @fragment entry point", key)
	}
	s.vertexEntry, s.fragmentEntry = vs[1], fs[1]

	for i, p := range s.properties {
		s.propertyIndex[p.Name] = i
		if p.Kind == PropertyKindTexture {
			s.textureCount++
		} else {
			s.uniformSlots++
		}
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.bindGroupLayouts = []wgpu.BindGroupLayoutDescriptor{
		FrameBindGroupLayoutDescriptor(),
		DrawBindGroupLayoutDescriptor(),
	}
	if s.textureCount > 0 {
		s.bindGroupLayouts = append(s.bindGroupLayouts, TextureBindGroupLayoutDescriptor(s.textureCount))
	}
	return s, nil
}

// NewShaderFromFile reads a WGSL file and builds a Shader from it. The key is the file name
// without its extension.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if the file cannot be read or the source is invalid
func NewShaderFromFile(path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewShader(key, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntry
}

func (s *shader) Properties() []Property {
	return append([]Property(nil), s.properties...)
}

func (s *shader) Property(name string) (Property, bool) {
	i, ok := s.propertyIndex[name]
	if !ok {
		return Property{}, false
	}
	return s.properties[i], true
}

func (s *shader) TextureCount() int {
	return s.textureCount
}

func (s *shader) UniformSlots() int {
	return s.uniformSlots
}

func (s *shader) DefaultParams() GPUMaterialParams {
	var g GPUMaterialParams
	for _, p := range s.properties {
		if p.Slot >= 0 {
			g.Params[p.Slot] = p.Default
		}
	}
	return g
}

func (s *shader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayouts
}
