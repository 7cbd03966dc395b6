package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		prefix, original, ext, want string
	}{
		{DefaultPrefix, "photo.png", "jpg", "compressed_photo.jpg"},
		{DefaultPrefix, "photo.jpeg", ".jpg", "compressed_photo.jpg"},
		{DefaultPrefix, "/tmp/in/holiday.final.webp", "jpg", "compressed_holiday.final.jpg"},
		{DefaultPrefix, "noext", "jpg", "compressed_noext.jpg"},
		{DefaultPrefix, "stdin", "jpg", "compressed_image.jpg"},
		{DefaultPrefix, ".png", "jpg", "compressed_image.jpg"},
		{"small-", "a.gif", "jpg", "small-a.jpg"},
		{"", "a.gif", "", "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.prefix, tt.original, tt.ext), tt.original)
	}
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := &Writer{Dir: dir}

	path, err := w.Write("compressed_a.jpg", []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "compressed_a.jpg"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriter_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	_, err := w.Write("out.jpg", []byte("first"))
	require.NoError(t, err)

	_, err = w.Write("out.jpg", []byte("second"))
	assert.ErrorIs(t, err, ErrExists)

	w.Overwrite = true
	path, err := w.Write("out.jpg", []byte("second"))
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriter_RejectsPaths(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	for _, name := range []string{"", "../escape.jpg", "sub/dir.jpg"} {
		_, err := w.Write(name, []byte("x"))
		assert.Error(t, err, name)
	}
}

func TestWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	paths, err := w.WriteAll(
		File{Name: "out.jpg", Data: []byte("image")},
		File{Name: "out.jpg.report.json", Data: []byte("{}")},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "out.jpg"), filepath.Join(dir, "out.jpg.report.json")}, paths)
}

func TestWriter_WriteAllKeepsExistingSideFile(t *testing.T) {
	dir := t.TempDir()
	side := filepath.Join(dir, "out.jpg.preview.jpg")
	require.NoError(t, os.WriteFile(side, []byte("keep me"), 0o644))

	w := &Writer{Dir: dir}
	_, err := w.WriteAll(
		File{Name: "out.jpg", Data: []byte("image")},
		File{Name: "out.jpg.preview.jpg", Data: []byte("thumb")},
	)
	require.ErrorIs(t, err, ErrExists)

	got, err := os.ReadFile(side)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
	assert.NoFileExists(t, filepath.Join(dir, "out.jpg"), "nothing is written when a target exists")

	w.Overwrite = true
	_, err = w.WriteAll(
		File{Name: "out.jpg", Data: []byte("image")},
		File{Name: "out.jpg.preview.jpg", Data: []byte("thumb")},
	)
	require.NoError(t, err)
	got, err = os.ReadFile(side)
	require.NoError(t, err)
	assert.Equal(t, "thumb", string(got))
}
