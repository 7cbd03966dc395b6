// Package export saves encoded payloads under names derived from the source.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPrefix is prepended to every exported file name.
const DefaultPrefix = "compressed_"

// ErrExists is returned when the target exists and overwriting is off.
var ErrExists = errors.New("output file already exists")

// FileName derives the export name for a source called original. The
// extension always comes from the encoder that produced the bytes, so
// "photo.png" exported as JPEG becomes "compressed_photo.jpg".
func FileName(prefix, original, ext string) string {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) || base == "stdin" {
		base = "image"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return prefix + stem
	}
	return prefix + stem + "." + ext
}

// Writer saves payloads into a directory.
type Writer struct {
	Dir       string
	Overwrite bool
}

// Write stores data as dir/name. The bytes land in a temp file in the same
// directory first and are renamed into place, so a failed write never
// leaves a truncated output behind.
func (w *Writer) Write(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid output name %q", name)
	}
	dir := w.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if !w.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename into %s: %w", path, err)
	}
	return path, nil
}

func (w *Writer) dir() string {
	if w.Dir == "" {
		return "."
	}
	return w.Dir
}

// File is one named payload for WriteAll.
type File struct {
	Name string
	Data []byte
}

// WriteAll stores files in order and returns their paths. Unless Overwrite
// is set, no file is written when any target already exists.
func (w *Writer) WriteAll(files ...File) ([]string, error) {
	if !w.Overwrite {
		for _, f := range files {
			path := filepath.Join(w.dir(), f.Name)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrExists, path)
			}
		}
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := w.Write(f.Name, f.Data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
