//go:build ignore

// gen_fixtures creates sample inputs for a manual imgreduce smoke run.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}

	// Opaque photo-like JPEG at high quality; reduce at 80 should shrink it.
	writeJPEG(filepath.Join(dir, "photo.jpg"), noisyGradient(2000, 1500), 100)

	// Small banner JPEG (400x225).
	writeJPEG(filepath.Join(dir, "banner.jpg"), noisyGradient(400, 225), 85)

	// Transparent logo; the output is flattened onto the background colour.
	writePNG(filepath.Join(dir, "logo.png"), alphaGradient(100, 100))

	// Text content behind an image extension; reduce must reject it.
	if err := os.WriteFile(filepath.Join(dir, "notes.png"), []byte("not an image\n"), 0o644); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 4 fixtures in %s\n", dir)
}

func noisyGradient(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := uint8(rng.IntN(48))
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*200/w) + n,
				G: uint8(y*200/h) + n,
				B: 128 + n,
				A: 255,
			})
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA, quality int) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		panic(err)
	}
}
