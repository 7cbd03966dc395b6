package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgreduce/internal/decoder"
	"github.com/AnyUserName/imgreduce/internal/encoder"
	"github.com/AnyUserName/imgreduce/internal/export"
	"github.com/AnyUserName/imgreduce/internal/hasher"
	"github.com/AnyUserName/imgreduce/internal/profile"
	"github.com/AnyUserName/imgreduce/internal/recompress"
	"github.com/AnyUserName/imgreduce/internal/report"
	"github.com/AnyUserName/imgreduce/internal/source"
)

var reducePreview bool

var reduceCmd = &cobra.Command{
	Use:   "reduce <image>",
	Short: "Recompress one image and save it as compressed_<name>.jpg",
	Long: `Decodes the image (PNG, JPEG, GIF, BMP, TIFF or WebP), draws it onto an
opaque canvas of the same size and encodes it as JPEG at the chosen quality.
Use "-" to read from standard input.

The output is written to --output-dir as <prefix><name>.jpg and is never
resized. Existing files are kept unless --overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

func init() {
	f := reduceCmd.Flags()
	f.IntP("quality", "q", 0, "quality 1-100 (0 = profile default)")
	f.StringP("profile", "p", profile.DefaultName, "quality preset ("+strings.Join(profile.Names(), ", ")+")")
	f.StringP("output-dir", "o", ".", "output directory")
	f.String("prefix", export.DefaultPrefix, "output filename prefix")
	f.String("background", "", "colour under transparent pixels, e.g. #ffffff (default from profile)")
	f.Duration("timeout", 30*time.Second, "abort the encode after this long (0 = no limit)")
	f.Bool("overwrite", false, "replace an existing output file")
	f.Bool("report", false, "write a JSON report next to the output")
	f.BoolVar(&reducePreview, "preview", false, "write a square preview thumbnail next to the output")
	rootCmd.AddCommand(reduceCmd)
}

// newRecompressor wires the decoder and JPEG encoder with the effective
// settings.
func newRecompressor(s settings) *recompress.Recompressor {
	return recompress.New(decoder.New(cfg.MaxPixels), &encoder.JPEGEncoder{}, recompress.Options{
		Background: s.background,
		Timeout:    cfg.Timeout,
		Logger:     log,
	})
}

func loadSource(path string) (*source.Image, error) {
	src, err := source.Load(path, cfg.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	if !src.IsImage() {
		log.WithFields(logrus.Fields{
			"source": src.Name,
			"mime":   src.MIMEType,
		}).Warn("input does not look like an image")
	}
	return src, nil
}

func runReduce(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cfg)
	if err != nil {
		return err
	}
	src, err := loadSource(args[0])
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"source":  src.Name,
		"size":    src.Size,
		"profile": s.profile.Name,
		"quality": s.quality,
	}).Debug("reducing")

	ctx := cmd.Context()
	rec := newRecompressor(s)
	sess := rec.NewSession(src)
	job, err := sess.Submit(ctx, s.quality)
	if err != nil {
		return err
	}
	res, err := job.Wait(ctx)
	if err != nil {
		return describe(src, err)
	}

	name := export.FileName(cfg.Prefix, src.Name, res.Extension)
	files := []export.File{{Name: name, Data: res.Data}}

	var previewName string
	if reducePreview && cfg.PreviewSize > 0 {
		thumb, err := report.Preview(res.Data, cfg.PreviewSize)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		previewName = report.PreviewName(name)
		files = append(files, export.File{Name: previewName, Data: thumb})
	}

	if cfg.Report {
		info, err := decoder.New(cfg.MaxPixels).Probe(src.Data)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		rep := report.New(s.profile.Name, src, info.Width, info.Height, res, name)
		rep.Output.Preview = previewName
		data, err := report.Marshal(rep)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		files = append(files, export.File{Name: report.FileName(name), Data: data})
	}

	w := export.Writer{Dir: cfg.OutputDir, Overwrite: cfg.Overwrite}
	paths, err := w.WriteAll(files...)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s\n", report.Summary(src.Size, res.Size))
	fmt.Fprintf(out, "  Saved:    %s (%dx%d, q=%d)\n", paths[0], res.Width, res.Height, res.Quality)
	next := 1
	if previewName != "" {
		fmt.Fprintf(out, "  Preview:  %s\n", paths[next])
		next++
	}
	if cfg.Report {
		fmt.Fprintf(out, "  Report:   %s\n", paths[next])
	}

	log.WithFields(logrus.Fields{
		"session": res.SessionID,
		"request": res.RequestID,
		"digest":  hasher.Short(res.Digest),
		"elapsed": res.Elapsed,
	}).Debug("done")
	return nil
}

// describe turns a recompression failure into a message for the user.
func describe(src *source.Image, err error) error {
	switch {
	case errors.Is(err, recompress.ErrUnsupportedInput):
		return fmt.Errorf("%s could not be read as an image (%s): %w", src.Name, src.MIMEType, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: gave up after %s: %w", src.Name, cfg.Timeout, err)
	default:
		return fmt.Errorf("%s: %w", src.Name, err)
	}
}
