// Package decoder turns raw source bytes into a pixel surface.
//
// Registered formats: JPEG, PNG, GIF (first frame) from the standard
// library, plus BMP, TIFF and WebP from golang.org/x/image. Content is
// sniffed before decoding, so a text file renamed to .jpg fails fast with
// ErrNotImage instead of reaching a codec.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmpty         = errors.New("empty input")
	ErrNotImage      = errors.New("content is not an image")
	ErrUnknownFormat = errors.New("image format not supported")
	ErrTooLarge      = errors.New("image dimensions exceed limit")
	ErrBadDimensions = errors.New("image has no pixels")
)

// Info describes a source image without decoding its pixels.
type Info struct {
	MIMEType string
	Format   string
	Width    int
	Height   int
}

// Decoder decodes any registered raster format.
type Decoder struct {
	// MaxPixels bounds width*height; 0 disables the check.
	MaxPixels int
}

// New returns a Decoder with the given pixel limit.
func New(maxPixels int) *Decoder {
	return &Decoder{MaxPixels: maxPixels}
}

// Probe sniffs the content type and reads the image header.
func (d *Decoder) Probe(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}

	mt := mimetype.Detect(data)
	info := Info{MIMEType: mt.String()}
	if !strings.HasPrefix(info.MIMEType, "image/") {
		return info, fmt.Errorf("%w: detected %s", ErrNotImage, info.MIMEType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return info, fmt.Errorf("%w: %s", ErrUnknownFormat, info.MIMEType)
		}
		return info, fmt.Errorf("read header: %w", err)
	}
	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return info, fmt.Errorf("%w: %dx%d", ErrBadDimensions, cfg.Width, cfg.Height)
	}
	if d.MaxPixels > 0 && cfg.Width*cfg.Height > d.MaxPixels {
		return info, fmt.Errorf("%w: %dx%d > %d pixels", ErrTooLarge, cfg.Width, cfg.Height, d.MaxPixels)
	}
	return info, nil
}

// Decode fully decodes data and returns the surface and its format name.
// The surface bounds are the intrinsic dimensions of the source.
func (d *Decoder) Decode(data []byte) (image.Image, string, error) {
	info, err := d.Probe(data)
	if err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", info.Format, err)
	}
	return img, format, nil
}

type opaquer interface {
	Opaque() bool
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(opaquer); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
