// pre_processor.go implements the polygon WGSL shader pre-processor. It scans shader
// source code for @polygon: annotations, replaces include annotations with the engine's
// shared struct sources and property annotations with generated accessors or texture
// bindings, and collects the declared material properties in source order.
//
// The structRegistry maps AnnotationArg keys to embedded WGSL struct sources together with
// the keys they depend on, so an include injects its dependencies first and no struct is
// emitted twice within one shader.
package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
)

// bindingsSource declares the engine's group 0 and group 1 bindings.
//
//go:embed assets/bindings.wgsl
var bindingsSource string

//go:embed assets/lighting.wgsl
var lightingSource string

//go:embed assets/vertex_stage.wgsl
var vertexStageSource string

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the registry keys that must be injected before it.
type registryEntry struct {
	// Source is the raw WGSL text injected by @polygon:include.
	Source string

	// Requires lists entries injected ahead of this one when not yet present.
	Requires []AnnotationArg
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type argument keys to their embedded WGSL source.
	structRegistry map[AnnotationArg]registryEntry

	// included tracks the entries already injected during the current Process call.
	included map[AnnotationArg]bool

	// properties accumulates property declarations during a Process call.
	// Reset at the start of each Process invocation.
	properties []Property
}

// PreProcessor processes raw WGSL shader source code containing @polygon: annotations,
// replacing them with injected struct sources or generated property code while collecting
// the material property declarations.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it by replacing
	// @polygon: annotations with their corresponding WGSL output. Include annotations
	// are replaced with embedded struct source text. Property annotations are replaced with
	// a prop_<name>() accessor (color, f32) or a texture/sampler binding pair (texture).
	//
	// The properties list is reset at the start of each call and can be retrieved
	// via Properties() after Process returns.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed, a property is declared twice,
	//     or the properties exceed MaxMaterialSlots uniform slots
	Process(source string) (string, error)

	// Properties returns the property declarations collected during the most recent call
	// to Process, in source order.
	//
	// Returns:
	//   - []Property: the properties collected during the last Process call
	Properties() []Property
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all engine struct types registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgVertex:         {Source: mesh.GPUVertexSource},
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource},
			AnnotationArgLight:          {Source: light.GPULightSource},
			AnnotationArgLightHeader:    {Source: light.GPULightHeaderSource},
			AnnotationArgTransform:      {Source: anchor.GPUTransformSource},
			AnnotationArgMaterialParams: {Source: GPUMaterialParamsSource},
			AnnotationArgBindings: {
				Source: bindingsSource,
				Requires: []AnnotationArg{
					AnnotationArgCamera,
					AnnotationArgLight,
					AnnotationArgLightHeader,
					AnnotationArgTransform,
					AnnotationArgMaterialParams,
				},
			},
			AnnotationArgLighting: {
				Source:   lightingSource,
				Requires: []AnnotationArg{AnnotationArgBindings},
			},
			AnnotationArgStandardVertex: {
				Source:   vertexStageSource,
				Requires: []AnnotationArg{AnnotationArgVertex, AnnotationArgBindings},
			},
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.properties = p.properties[:0]
	p.included = make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	var slot, textureIndex int
	seen := make(map[string]int)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			out = p.include(out, a.Args[0])
		case AnnotationTypeProperty:
			name := string(a.Args[1])
			if prev, dup := seen[name]; dup {
				return "", fmt.Errorf("line %d: property %q already declared on line %d", i+1, name, prev)
			}
			seen[name] = i + 1

			prop, err := propertyFromAnnotation(*a, slot, textureIndex)
			if err != nil {
				return "", err
			}
			if prop.Kind == PropertyKindTexture {
				textureIndex++
			} else {
				if slot >= MaxMaterialSlots {
					return "", fmt.Errorf("line %d: property %q exceeds the %d material uniform slots", i+1, name, MaxMaterialSlots)
				}
				slot++
			}
			p.properties = append(p.properties, prop)
			// accessors read the material uniform declared with the bindings
			out = p.include(out, AnnotationArgBindings)
			out = append(out, prop.generatedSource())
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Properties() []Property {
	return p.properties
}

// include appends the source of a registry entry, preceded by its not yet included dependencies.
func (p *preProcessor) include(out []string, key AnnotationArg) []string {
	if p.included[key] {
		return out
	}
	p.included[key] = true
	entry := p.structRegistry[key]
	for _, req := range entry.Requires {
		out = p.include(out, req)
	}
	return append(out, entry.Source)
}
