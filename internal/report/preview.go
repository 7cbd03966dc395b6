package report

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// PreviewName is the file name of the square thumbnail for an output.
func PreviewName(outputName string) string {
	return outputName + ".preview.jpg"
}

// Preview decodes an encoded image and returns a size×size cover-cropped
// JPEG thumbnail of it.
func Preview(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("preview size %d", size)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for preview: %w", err)
	}
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
