package source

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Holiday.JPG")
	data := pngBytes(t)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	img, err := Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, "Holiday.JPG", img.Name)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, int64(len(data)), img.Size)
	assert.Equal(t, data, img.Data)
	// Extension says jpeg, content says png.
	assert.Equal(t, "jpeg", img.Format)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.True(t, img.IsImage())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.png"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(dir, 0)
	assert.Error(t, err)

	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, make([]byte, 100), 0o644))
	_, err = Load(big, 99)
	assert.ErrorIs(t, err, ErrTooBig)
}

func TestRead_Limit(t *testing.T) {
	_, err := Read("in", strings.NewReader("0123456789"), 9)
	assert.ErrorIs(t, err, ErrTooBig)

	img, err := Read("in", strings.NewReader("0123456789"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), img.Size)
}

func TestFromBytes_TextIsNotImage(t *testing.T) {
	img := FromBytes("notes.png", []byte("just some notes\n"))
	assert.False(t, img.IsImage())
	assert.Equal(t, "png", img.Format)
	assert.True(t, strings.HasPrefix(img.MIMEType, "text/plain"))
}

func TestFormatFromName(t *testing.T) {
	tests := map[string]string{
		"a.jpg":     "jpeg",
		"a.JPEG":    "jpeg",
		"b.tif":     "tiff",
		"c.webp":    "webp",
		"d.txt":     "",
		"noext":     "",
		"dir/e.PNG": "png",
	}
	for name, want := range tests {
		assert.Equal(t, want, FormatFromName(name), name)
	}
}
