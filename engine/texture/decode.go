package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// FromImage converts any image.Image to an 8-bit RGBA texture.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *Texture2D: the converted texture
//   - error: ErrDimensions for an empty image
func FromImage(img image.Image) (*Texture2D, error) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return NewTexture2D(uint32(b.Dx()), uint32(b.Dy()), FormatRGBA, rgba.Pix[:b.Dx()*b.Dy()*4])
}

// Decode reads a BMP, PNG or JPEG image from r.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - *Texture2D: the decoded texture in RGBA
//   - error: a decode error
func Decode(r io.Reader) (*Texture2D, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	t, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("texture: convert %s: %w", format, err)
	}
	return t, nil
}

// Load reads and decodes an image file.
//
// Parameters:
//   - path: the file path of a BMP, PNG or JPEG image
//
// Returns:
//   - *Texture2D: the decoded texture in RGBA
//   - error: a read or decode error
func Load(path string) (*Texture2D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: load %q: %w", path, err)
	}
	return t, nil
}
