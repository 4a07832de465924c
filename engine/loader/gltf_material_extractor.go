package loader

import (
	"bytes"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/model"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

const (
	minShininess = 1
	maxShininess = 256
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser

	// images caches decoded images so materials sharing one image share one texture.
	images map[int]*texture.Texture2D
}

// gltfMaterialExtractor converts glTF PBR materials into the base color, base color texture
// and shininess the built-in shaders use.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, decoding its base color texture.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - model.MaterialData: the extracted material
	//   - error: error if the index is out of range or the texture cannot be decoded
	ExtractMaterial(materialIndex int) (model.MaterialData, error)

	// ExtractAllMaterials extracts every material in document order.
	//
	// Returns:
	//   - []model.MaterialData: all materials
	//   - error: error if any material fails to extract
	ExtractAllMaterials() ([]model.MaterialData, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser, images: make(map[int]*texture.Texture2D)}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (model.MaterialData, error) {
	doc := e.parser.Document()
	if doc == nil {
		return model.MaterialData{}, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return model.MaterialData{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	out := model.MaterialData{
		Name:      mat.Name,
		BaseColor: common.ColorWhite,
		Shininess: roughnessToShininess(1),
	}
	if out.Name == "" {
		out.Name = fmt.Sprintf("material_%d", materialIndex)
	}

	pbr := mat.PbrMetallicRoughness
	if pbr == nil {
		return out, nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		out.BaseColor = common.NewColor(f[0], f[1], f[2], f[3])
	}
	if pbr.RoughnessFactor != nil {
		out.Shininess = roughnessToShininess(*pbr.RoughnessFactor)
	}
	if pbr.BaseColorTexture != nil {
		tex, err := e.loadTexture(pbr.BaseColorTexture.Index)
		if err != nil {
			return model.MaterialData{}, fmt.Errorf("material %q: base color texture: %w", out.Name, err)
		}
		out.BaseColorTexture = tex
	}
	return out, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]model.MaterialData, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	materials := make([]model.MaterialData, 0, len(doc.Materials))
	for i := range doc.Materials {
		m, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// loadTexture decodes the image behind a glTF texture. The image may live in a buffer view,
// a data URI or a file next to the document.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*texture.Texture2D, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	src := doc.Textures[textureIndex].Source
	if src == nil {
		return nil, nil
	}
	imageIndex := *src
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}
	if tex, ok := e.images[imageIndex]; ok {
		return tex, nil
	}

	img := &doc.Images[imageIndex]
	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		data, err = e.parser.ReadBufferView(*img.BufferView)
	case img.URI != "":
		data, _, err = e.parser.ReadURI(img.URI)
	default:
		return nil, fmt.Errorf("image %d has neither a bufferView nor a URI", imageIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", imageIndex, err)
	}

	tex, err := texture.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", imageIndex, err)
	}
	e.images[imageIndex] = tex
	return tex, nil
}

// roughnessToShininess maps a PBR roughness onto a Blinn-Phong exponent: alpha = roughness^2,
// shininess = 2/alpha^2 - 2, clamped to a range the lit shaders handle.
func roughnessToShininess(roughness float32) float32 {
	alpha := math32.Max(roughness*roughness, 1e-3)
	s := 2/(alpha*alpha) - 2
	return math32.Min(math32.Max(s, minShininess), maxShininess)
}
