package recompress

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/imgreduce/internal/decoder"
	"github.com/AnyUserName/imgreduce/internal/encoder"
	"github.com/AnyUserName/imgreduce/internal/source"
)

// gradient fills an image with a smooth pattern plus seeded noise so the
// encoder has real detail to trade against quality.
func gradient(w, h int, seed int64) *image.NRGBA {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := uint8(rnd.Intn(48))
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/max(w, 1)) ^ n,
				G: uint8(y*255/max(h, 1)) + n,
				B: uint8((x+y)%256) - n,
				A: 255,
			})
		}
	}
	return img
}

func pngSource(t *testing.T, name string, img image.Image) *source.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return source.FromBytes(name, buf.Bytes())
}

func jpegSource(t *testing.T, name string, img image.Image, quality int) *source.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return source.FromBytes(name, buf.Bytes())
}

func newRecompressor(opts Options) *Recompressor {
	return New(decoder.New(0), &encoder.JPEGEncoder{}, opts)
}

// decodeFunc adapts a function to Decoder.
type decodeFunc func(data []byte) (image.Image, string, error)

func (f decodeFunc) Decode(data []byte) (image.Image, string, error) { return f(data) }

// fakeEncoder returns canned output or errors.
type fakeEncoder struct {
	data  []byte
	err   error
	panic bool
}

func (e *fakeEncoder) Format() string    { return "fake" }
func (e *fakeEncoder) Extension() string { return "fk" }
func (e *fakeEncoder) MIMEType() string  { return "image/x-fake" }

func (e *fakeEncoder) Encode(_ image.Image, _ int) ([]byte, error) {
	if e.panic {
		panic("encoder exploded")
	}
	return e.data, e.err
}

func solidDecoder(w, h int) decodeFunc {
	return func([]byte) (image.Image, string, error) {
		return image.NewNRGBA(image.Rect(0, 0, w, h)), "fake", nil
	}
}

// gate blocks decodes until released.
type gate struct {
	inner   Decoder
	entered chan struct{}
	release chan struct{}
}

func newGate(t *testing.T, inner Decoder) *gate {
	g := &gate{
		inner:   inner,
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
	t.Cleanup(g.open)
	return g
}

func (g *gate) Decode(data []byte) (image.Image, string, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Decode(data)
}

// step lets exactly one blocked decode through.
func (g *gate) step() {
	g.release <- struct{}{}
}

func (g *gate) open() {
	select {
	case <-g.release:
	default:
		close(g.release)
	}
}

// flaky fails the first n decodes.
type flaky struct {
	inner Decoder
	fails atomic.Int32
}

var errFlaky = errors.New("flaky decode")

func (f *flaky) Decode(data []byte) (image.Image, string, error) {
	if f.fails.Add(-1) >= 0 {
		return nil, "", errFlaky
	}
	return f.inner.Decode(data)
}
