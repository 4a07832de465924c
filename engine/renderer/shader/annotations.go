// annotations.go defines the annotation types, argument constants, and parser for the
// polygon WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @polygon: that inject the engine's shared struct definitions and declare the
// material properties a shader exposes. The parsed results are stored as Annotation values
// and consumed by the PreProcessor, which turns property annotations into Property
// declarations used by the material system.
package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a polygon annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@polygon:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// (and the structs it depends on) into the shader at the annotation site.
	//
	// Syntax: //@polygon:include <struct_type>
	//
	// Example: //@polygon:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeProperty declares a material property. Color and f32 properties occupy one
	// vec4 slot of the material uniform and generate a prop_<name>() accessor function. Texture
	// properties generate a texture/sampler binding pair in the texture group named
	// tex_<name> and samp_<name>.
	//
	// Syntax: //@polygon:property <kind> <name> [default...]
	//
	// Examples:
	//   //@polygon:property color surface_color 1.0 0.5 0.2
	//   //@polygon:property f32 shininess 32
	//   //@polygon:property texture diffuse
	AnnotationTypeProperty AnnotationType = "property"
)

// Annotation represents a single parsed @polygon: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include or property).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - property: [0] = property kind, [1] = property name, [2:] = default components
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL sources that @polygon:include can inject. The struct entries
// map to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgVertex identifies the VertexInput struct.
	// Source: engine/mesh/assets/vertex.wgsl
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgLight identifies the Light struct for per-light GPU data.
	// Source: engine/light/assets/light.wgsl
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgLightHeader identifies the LightHeader struct containing light count and ambient color.
	// Source: engine/light/assets/light_header.wgsl
	AnnotationArgLightHeader AnnotationArg = "light_header"

	// AnnotationArgTransform identifies the per-draw TransformUniform struct.
	// Source: engine/anchor/assets/transform.wgsl
	AnnotationArgTransform AnnotationArg = "transform"

	// AnnotationArgMaterialParams identifies the MaterialParams uniform struct.
	// Source: engine/renderer/shader/assets/material_params.wgsl
	AnnotationArgMaterialParams AnnotationArg = "material_params"

	// AnnotationArgBindings injects every struct above except the vertex input, followed by the
	// engine's standard group 0 (camera, lights) and group 1 (transform, material) declarations.
	// Source: engine/renderer/shader/assets/bindings.wgsl
	AnnotationArgBindings AnnotationArg = "bindings"

	// AnnotationArgLighting injects the shared light sampling helpers shade_diffuse and
	// shade_specular, along with the bindings they read.
	// Source: engine/renderer/shader/assets/lighting.wgsl
	AnnotationArgLighting AnnotationArg = "lighting"

	// AnnotationArgStandardVertex injects the VertexOutput struct and the vs_main entry point
	// used by every built-in shader.
	// Source: engine/renderer/shader/assets/vertex_stage.wgsl
	AnnotationArgStandardVertex AnnotationArg = "standard_vertex"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @polygon:include annotations. Each entry must have a corresponding
// registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgVertex,
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgLightHeader,
	AnnotationArgTransform,
	AnnotationArgMaterialParams,
	AnnotationArgBindings,
	AnnotationArgLighting,
	AnnotationArgStandardVertex,
}

// PropertyKind is the value kind of a material property.
type PropertyKind string

const (
	// PropertyKindColor is an RGBA color occupying one vec4 uniform slot.
	PropertyKindColor PropertyKind = "color"

	// PropertyKindF32 is a scalar occupying the x component of one vec4 uniform slot.
	PropertyKindF32 PropertyKind = "f32"

	// PropertyKindTexture is a 2D texture bound with a filtering sampler in the texture group.
	PropertyKindTexture PropertyKind = "texture"
)

// ParsePropertyKind converts a kind name into a PropertyKind.
//
// Parameters:
//   - s: the kind name (color, f32 or texture)
//
// Returns:
//   - PropertyKind: the parsed kind
//   - bool: false if the name is not a known kind
func ParsePropertyKind(s string) (PropertyKind, bool) {
	switch k := PropertyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PropertyKindColor, PropertyKindF32, PropertyKindTexture:
		return k, true
	}
	return "", false
}

func (k PropertyKind) String() string {
	return string(k)
}

// identifierPattern matches names usable inside generated WGSL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseAnnotation attempts to parse a single line of WGSL source as a @polygon: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @polygon annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @polygon include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @polygon include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeProperty):
		if len(args) < 3 {
			return nil, fmt.Errorf("line %d: @polygon property annotation requires a kind and a name", lineNum)
		}
		kind, ok := ParsePropertyKind(args[1])
		if !ok {
			return nil, fmt.Errorf("line %d: unknown property kind %q in @polygon property annotation", lineNum, args[1])
		}
		if !identifierPattern.MatchString(args[2]) {
			return nil, fmt.Errorf("line %d: invalid property name %q in @polygon property annotation", lineNum, args[2])
		}
		defaults := args[3:]
		switch kind {
		case PropertyKindColor:
			if len(defaults) != 0 && len(defaults) != 3 && len(defaults) != 4 {
				return nil, fmt.Errorf("line %d: color property %q takes 0, 3 or 4 default components, got %d", lineNum, args[2], len(defaults))
			}
		case PropertyKindF32:
			if len(defaults) > 1 {
				return nil, fmt.Errorf("line %d: f32 property %q takes at most one default, got %d", lineNum, args[2], len(defaults))
			}
		case PropertyKindTexture:
			if len(defaults) != 0 {
				return nil, fmt.Errorf("line %d: texture property %q does not take defaults", lineNum, args[2])
			}
		}
		out := []AnnotationArg{AnnotationArg(kind), AnnotationArg(args[2])}
		for _, d := range defaults {
			if _, err := strconv.ParseFloat(d, 32); err != nil {
				return nil, fmt.Errorf("line %d: invalid default %q for property %q: %v", lineNum, d, args[2], err)
			}
			out = append(out, AnnotationArg(d))
		}
		return &Annotation{
			Type: AnnotationTypeProperty,
			Args: out,
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @polygon annotation type %q", lineNum, args[0])
	}
}
