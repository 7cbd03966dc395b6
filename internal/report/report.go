// Package report formats size comparisons and reads and writes the JSON
// report that accompanies a reduced image.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/AnyUserName/imgreduce/internal/hasher"
	"github.com/AnyUserName/imgreduce/internal/recompress"
	"github.com/AnyUserName/imgreduce/internal/source"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units and at most two
// decimals, dropping trailing zeros: 0 Bytes, 512 Bytes, 1.5 KB, 3.27 MB.
func FormatSize(b int64) string {
	if b <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(b)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)
	v := float64(b) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// ReductionPercent is round((1 - compressed/original) * 100). It is negative
// when the output grew, and 0 for an empty original.
func ReductionPercent(original, compressed int64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(compressed)/float64(original)) * 100))
}

// Summary is the one-line size comparison shown after a reduction.
func Summary(original, compressed int64) string {
	return fmt.Sprintf("%s → %s (%d%% reduction)",
		FormatSize(original), FormatSize(compressed), ReductionPercent(original, compressed))
}

// New creates a report for res, saved at outputPath, relative to the
// directory the report itself will live in.
func New(profileName string, src *source.Image, width, height int, res recompress.Result, outputRel string) *Report {
	r := &Report{
		Version:     SupportedReportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:     profileName,
		Source: SourceInfo{
			Name:     src.Name,
			MIMEType: src.MIMEType,
			Format:   res.SourceFormat,
			Width:    width,
			Height:   height,
			Size:     src.Size,
		},
		Output: OutputInfo{
			Path:      filepath.ToSlash(outputRel),
			Format:    res.Format,
			MIMEType:  res.MIMEType,
			Quality:   res.Quality,
			Width:     res.Width,
			Height:    res.Height,
			Size:      res.Size,
			Digest:    res.Digest,
			Flattened: res.Flattened,
			SessionID: res.SessionID,
			RequestID: res.RequestID,
		},
	}
	r.ComputeStats()
	r.Stats.ElapsedMS = res.Elapsed.Milliseconds()
	return r
}

// ComputeStats recalculates the size comparison from source and output.
func (r *Report) ComputeStats() {
	r.Stats.ReductionPercent = ReductionPercent(r.Source.Size, r.Output.Size)
	r.Stats.Ratio = 0
	if r.Source.Size > 0 {
		r.Stats.Ratio = math.Round(float64(r.Output.Size)/float64(r.Source.Size)*10000) / 10000
	}
}

// FileName is the report name for an output file.
func FileName(outputName string) string {
	return outputName + ".report.json"
}

// Marshal serializes the report with indentation.
func Marshal(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReadJSON loads a report. Unknown fields are ignored.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

// Validate checks the report for internal consistency and against the
// files on disk under baseDir. It returns one message per problem.
func Validate(r *Report, baseDir string) []string {
	var errs []string

	if r.Version != SupportedReportVersion {
		errs = append(errs, fmt.Sprintf("unsupported report version: %d", r.Version))
	}

	if r.Source.Size <= 0 {
		errs = append(errs, fmt.Sprintf("source: invalid size %d", r.Source.Size))
	}
	if r.Source.Width <= 0 || r.Source.Height <= 0 {
		errs = append(errs, fmt.Sprintf("source: invalid dimensions %dx%d", r.Source.Width, r.Source.Height))
	}

	o := r.Output
	if o.Format == "" {
		errs = append(errs, "output: empty format")
	}
	if o.Quality < 1 || o.Quality > 100 {
		errs = append(errs, fmt.Sprintf("output: quality %d not in [1,100]", o.Quality))
	}
	if o.Width != r.Source.Width || o.Height != r.Source.Height {
		errs = append(errs, fmt.Sprintf("output: dimensions %dx%d differ from source %dx%d",
			o.Width, o.Height, r.Source.Width, r.Source.Height))
	}
	if len(o.Digest) != hasher.DigestLen {
		errs = append(errs, fmt.Sprintf("output: malformed digest %q", o.Digest))
	}

	want := ReductionPercent(r.Source.Size, o.Size)
	if r.Stats.ReductionPercent != want {
		errs = append(errs, fmt.Sprintf("stats.reduction_percent mismatch: %d != %d", r.Stats.ReductionPercent, want))
	}

	if o.Path == "" {
		errs = append(errs, "output: missing path")
		return errs
	}
	errs = append(errs, checkFile(filepath.Join(baseDir, filepath.FromSlash(o.Path)), o.Size, o.Digest)...)

	if o.Preview != "" {
		if _, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(o.Preview))); err != nil {
			errs = append(errs, fmt.Sprintf("preview: file not found: %s", o.Preview))
		}
	}
	return errs
}

func checkFile(path string, size int64, digest string) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("output: file not found: %s", path)}
	}
	defer f.Close()

	var errs []string
	info, err := f.Stat()
	if err == nil && info.Size() != size {
		errs = append(errs, fmt.Sprintf("output: size mismatch: report=%d, disk=%d", size, info.Size()))
	}
	got, err := hasher.DigestReader(f)
	if err != nil {
		return append(errs, fmt.Sprintf("output: read %s: %v", path, err))
	}
	if got != digest {
		errs = append(errs, fmt.Sprintf("output: digest mismatch: report=%s, disk=%s", digest, got))
	}
	return errs
}
