package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

const (
	MinQuality = 1
	MaxQuality = 100
)

// ErrQualityRange is returned for qualities outside [MinQuality, MaxQuality].
var ErrQualityRange = errors.New("quality out of range")

// JPEGEncoder encodes images to baseline JPEG using Go's standard library.
// JPEG carries no alpha channel; callers flatten transparency first.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpg" }
func (e *JPEGEncoder) MIMEType() string  { return "image/jpeg" }

func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality < MinQuality || quality > MaxQuality {
		return nil, fmt.Errorf("%w: %d not in [%d,%d]", ErrQualityRange, quality, MinQuality, MaxQuality)
	}

	var buf bytes.Buffer
	buf.Grow(estimateSize(img.Bounds(), quality))

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// estimateSize guesses the encoded size so typical photos encode without
// repeated buffer growth. Roughly 0.1 to 1.5 bytes per pixel across the
// quality range, capped at 8 MB.
func estimateSize(b image.Rectangle, quality int) int {
	px := b.Dx() * b.Dy()
	n := px * (1 + quality*14/MaxQuality) / 10
	return min(max(n, 4*1024), 8<<20)
}
