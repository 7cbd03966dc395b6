package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// StdinName is the path that selects standard input.
const StdinName = "-"

// ErrTooBig is returned when the input exceeds the configured byte limit.
var ErrTooBig = errors.New("input exceeds size limit")

// Image is a captured source file. The bytes are read once at capture and
// never modified.
type Image struct {
	// Name is the base filename used to derive export names.
	Name string
	// Path is where the bytes came from ("-" for stdin).
	Path string
	// Data is the raw file content.
	Data []byte
	// Size is len(Data).
	Size int64
	// MIMEType is sniffed from the content, not from the extension.
	MIMEType string
	// Format is the normalized name implied by the extension (jpeg, png, ...).
	Format string
}

// IsImage reports whether the sniffed content type is image/*.
func (img *Image) IsImage() bool {
	return strings.HasPrefix(img.MIMEType, "image/")
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Load reads the file at path. maxBytes <= 0 disables the size limit.
func Load(path string, maxBytes int64) (*Image, error) {
	if path == StdinName {
		return Read("stdin", os.Stdin, maxBytes)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooBig, path, info.Size(), maxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Read(filepath.Base(path), f, maxBytes)
	if err != nil {
		return nil, err
	}
	img.Path = path
	return img, nil
}

// Read captures an image from r under the given display name.
func Read(name string, r io.Reader, maxBytes int64) (*Image, error) {
	if maxBytes > 0 {
		// One extra byte tells us the limit was crossed.
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooBig, name, maxBytes)
	}
	return FromBytes(name, data), nil
}

// FromBytes wraps in-memory content as a source image.
func FromBytes(name string, data []byte) *Image {
	return &Image{
		Name:     name,
		Path:     StdinName,
		Data:     data,
		Size:     int64(len(data)),
		MIMEType: mimetype.Detect(data).String(),
		Format:   FormatFromName(name),
	}
}

// FormatFromName normalizes the extension of name into a format string.
// Unknown extensions yield "".
func FormatFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !imageExtensions[ext] {
		return ""
	}
	format := strings.TrimPrefix(ext, ".")
	switch format {
	case "jpg":
		format = "jpeg"
	case "tif":
		format = "tiff"
	}
	return format
}
