// Package texture holds CPU-side 2D texture data in one of several channel layouts and element
// types, and converts it to the RGBA8 form the renderer uploads.
package texture

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
)

var (
	// ErrDataLength is returned when the pixel data does not hold exactly width*height*channels elements.
	ErrDataLength = errors.New("texture: data length does not match dimensions")
	// ErrDimensions is returned for a zero width or height.
	ErrDimensions = errors.New("texture: width and height must be non-zero")
	// ErrFormat is returned for a DataFormat outside the declared layouts.
	ErrFormat = errors.New("texture: unknown data format")
)

// DataFormat is the channel layout of the pixel data.
type DataFormat int

const (
	FormatRGBA DataFormat = iota
	FormatRGB
	FormatBGRA
	FormatBGR
)

// Valid reports whether f is one of the declared layouts.
func (f DataFormat) Valid() bool {
	return f >= FormatRGBA && f <= FormatBGR
}

// Channels returns the number of elements per pixel.
func (f DataFormat) Channels() int {
	switch f {
	case FormatRGB, FormatBGR:
		return 3
	default:
		return 4
	}
}

func (f DataFormat) String() string {
	switch f {
	case FormatRGBA:
		return "rgba"
	case FormatRGB:
		return "rgb"
	case FormatBGRA:
		return "bgra"
	case FormatBGR:
		return "bgr"
	default:
		return fmt.Sprintf("DataFormat(%d)", int(f))
	}
}

// ElementType tags which storage slice of a Texture2D holds the pixels.
type ElementType int

const (
	// ElementU8 stores one byte per channel, 0..255.
	ElementU8 ElementType = iota
	// ElementF32 stores one float per channel, nominally 0..1.
	ElementF32
)

// Texture2D is an immutable 2D image. Exactly one of the u8 / f32 slices is populated,
// according to the element type.
type Texture2D struct {
	width, height uint32
	format        DataFormat
	elem          ElementType
	u8            []uint8
	f32           []float32
}

// NewTexture2D creates a texture from 8-bit channel data.
//
// Parameters:
//   - width, height: the dimensions in pixels
//   - format: the channel layout of data
//   - data: width*height*format.Channels() bytes, row-major from the top-left pixel
//
// Returns:
//   - *Texture2D: the texture, which keeps its own copy of data
//   - error: ErrDimensions, ErrFormat or ErrDataLength
func NewTexture2D(width, height uint32, format DataFormat, data []uint8) (*Texture2D, error) {
	if err := validate(width, height, format, len(data)); err != nil {
		return nil, err
	}
	return &Texture2D{
		width:  width,
		height: height,
		format: format,
		elem:   ElementU8,
		u8:     append([]uint8(nil), data...),
	}, nil
}

// NewTexture2DFloat creates a texture from float channel data. Values are clamped to [0, 1] on upload.
//
// Parameters:
//   - width, height: the dimensions in pixels
//   - format: the channel layout of data
//   - data: width*height*format.Channels() floats, row-major from the top-left pixel
//
// Returns:
//   - *Texture2D: the texture, which keeps its own copy of data
//   - error: ErrDimensions, ErrFormat or ErrDataLength
func NewTexture2DFloat(width, height uint32, format DataFormat, data []float32) (*Texture2D, error) {
	if err := validate(width, height, format, len(data)); err != nil {
		return nil, err
	}
	return &Texture2D{
		width:  width,
		height: height,
		format: format,
		elem:   ElementF32,
		f32:    append([]float32(nil), data...),
	}, nil
}

// Solid creates a 1x1 RGBA texture of a single color.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - *Texture2D: the texture
func Solid(c common.Color) *Texture2D {
	t, _ := NewTexture2DFloat(1, 1, FormatRGBA, []float32{c.R, c.G, c.B, c.A})
	return t
}

func validate(width, height uint32, format DataFormat, n int) error {
	if width == 0 || height == 0 {
		return ErrDimensions
	}
	if !format.Valid() {
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
	want := int(width) * int(height) * format.Channels()
	if n != want {
		return fmt.Errorf("%w: got %d elements, want %d for %dx%d %s", ErrDataLength, n, want, width, height, format)
	}
	return nil
}

func (t *Texture2D) Width() uint32            { return t.width }
func (t *Texture2D) Height() uint32           { return t.height }
func (t *Texture2D) Format() DataFormat       { return t.format }
func (t *Texture2D) ElementType() ElementType { return t.elem }

// Bytes returns the 8-bit channel data, or nil for float textures.
func (t *Texture2D) Bytes() []uint8 {
	return t.u8
}

// Floats returns the float channel data, or nil for 8-bit textures.
func (t *Texture2D) Floats() []float32 {
	return t.f32
}

// RGBA8 converts the pixel data to tightly packed RGBA with one byte per channel. Missing alpha
// becomes 255, BGR layouts are swizzled and float channels are clamped to [0, 1] and scaled.
//
// Returns:
//   - []byte: width*height*4 bytes
func (t *Texture2D) RGBA8() []byte {
	n := int(t.width) * int(t.height)
	ch := t.format.Channels()
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		var px [4]uint8
		px[3] = 255
		for c := 0; c < ch; c++ {
			if t.elem == ElementF32 {
				px[c] = floatToByte(t.f32[i*ch+c])
			} else {
				px[c] = t.u8[i*ch+c]
			}
		}
		if t.format == FormatBGR || t.format == FormatBGRA {
			px[0], px[2] = px[2], px[0]
		}
		copy(out[i*4:], px[:])
	}
	return out
}

// StagingData returns the texture in the form the renderer's bind group provider uploads.
func (t *Texture2D) StagingData() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: t.RGBA8(),
		Width:  t.width,
		Height: t.height,
	}
}

// floatToByte maps NaN to 0.
func floatToByte(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}
