// Package recompress re-encodes a source image at a chosen quality.
//
// The operation decodes the source into a surface of its intrinsic size,
// renders that surface onto an opaque canvas of the same size at (0,0),
// and encodes the canvas with a fixed lossy encoder. JPEG has no alpha
// channel, so transparent pixels are composited over the configured
// background colour (white unless overridden).
//
// Recompressor.Recompress is the synchronous form. Session wraps it in an
// asynchronous, at-most-one-in-flight job model where every job settles.
package recompress

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/imgreduce/internal/decoder"
	"github.com/AnyUserName/imgreduce/internal/encoder"
	"github.com/AnyUserName/imgreduce/internal/hasher"
	"github.com/AnyUserName/imgreduce/internal/logging"
	"github.com/AnyUserName/imgreduce/internal/source"
)

// Decoder turns source bytes into a pixel surface and names its format.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// DefaultBackground is the colour transparent pixels are flattened onto.
var DefaultBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Options configures a Recompressor. Zero values select defaults.
type Options struct {
	// Background is composited under transparent source pixels. Its own
	// alpha is ignored; the canvas is always opaque.
	Background color.Color
	// Timeout bounds each invocation; 0 means no limit beyond ctx.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Recompressor runs the decode, render, encode sequence.
type Recompressor struct {
	dec     Decoder
	enc     encoder.Encoder
	bg      color.NRGBA
	timeout time.Duration
	log     logrus.FieldLogger
}

// New creates a Recompressor around the given codec halves.
func New(dec Decoder, enc encoder.Encoder, opts Options) *Recompressor {
	bg := DefaultBackground
	if opts.Background != nil {
		bg = color.NRGBAModel.Convert(opts.Background).(color.NRGBA)
		bg.A = 255
	}
	var log logrus.FieldLogger = logging.Discard()
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Recompressor{
		dec:     dec,
		enc:     enc,
		bg:      bg,
		timeout: opts.Timeout,
		log:     log,
	}
}

// Result is one encoded payload. It is produced fresh by every invocation.
type Result struct {
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id"`
	Quality   int    `json:"quality"`

	Data []byte `json:"-"`
	Size int64  `json:"size"`

	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceFormat string `json:"source_format"`
	Format       string `json:"format"`
	Extension    string `json:"extension"`
	MIMEType     string `json:"mime_type"`

	// Flattened is true when the source had transparency that was
	// composited onto the background.
	Flattened bool          `json:"flattened"`
	Digest    string        `json:"digest"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

type request struct {
	sessionID string
	requestID string
	src       *source.Image
	quality   int
}

// Recompress re-encodes src at quality and blocks until done, failed, or
// ctx is done.
func (r *Recompressor) Recompress(ctx context.Context, src *source.Image, quality int) (Result, error) {
	return r.process(ctx, request{
		requestID: uuid.NewString(),
		src:       src,
		quality:   quality,
	})
}

type stage int

const (
	stageDecode stage = iota
	stageRender
	stageEncode
)

type outcome struct {
	res Result
	err error
}

func (r *Recompressor) process(ctx context.Context, req request) (Result, error) {
	if req.src == nil {
		return Result{}, fmt.Errorf("%w: no source", ErrUnsupportedInput)
	}
	if req.quality < encoder.MinQuality || req.quality > encoder.MaxQuality {
		return Result{}, fmt.Errorf("%w: %d not in [%d,%d]",
			ErrInvalidQuality, req.quality, encoder.MinQuality, encoder.MaxQuality)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("recompress %s: %w", req.src.Name, err)
	}

	log := r.log.WithFields(logrus.Fields{
		"session": req.sessionID,
		"request": req.requestID,
		"source":  req.src.Name,
		"quality": req.quality,
	})
	log.Debug("recompress started")

	// Codecs are not cancellable, so the work runs on its own goroutine and
	// the buffered channel lets it finish after the caller gave up.
	out := make(chan outcome, 1)
	go func() {
		st := stageDecode
		defer func() {
			if p := recover(); p != nil {
				out <- outcome{err: stageError(st, req.src.Name, fmt.Errorf("panic: %v", p))}
			}
		}()
		res, err := r.convert(req, &st)
		out <- outcome{res: res, err: err}
	}()

	select {
	case o := <-out:
		if o.err != nil {
			log.WithField("kind", Kind(o.err)).WithError(o.err).Warn("recompress failed")
			return Result{}, o.err
		}
		log.WithFields(logrus.Fields{
			"size":    o.res.Size,
			"digest":  hasher.Short(o.res.Digest),
			"elapsed": o.res.Elapsed.Round(time.Millisecond),
		}).Debug("recompress done")
		return o.res, nil
	case <-ctx.Done():
		err := fmt.Errorf("recompress %s: %w", req.src.Name, ctx.Err())
		log.WithField("kind", Kind(err)).Warn("recompress abandoned")
		return Result{}, err
	}
}

func (r *Recompressor) convert(req request, st *stage) (Result, error) {
	start := time.Now()

	*st = stageDecode
	img, format, err := r.dec.Decode(req.src.Data)
	if err != nil {
		return Result{}, stageError(stageDecode, req.src.Name, err)
	}

	*st = stageRender
	canvas, flattened := render(img, r.bg)

	*st = stageEncode
	data, err := r.enc.Encode(canvas, req.quality)
	if err != nil {
		return Result{}, stageError(stageEncode, req.src.Name, err)
	}
	if len(data) == 0 {
		return Result{}, stageError(stageEncode, req.src.Name, fmt.Errorf("%s encoder returned no data", r.enc.Format()))
	}

	b := canvas.Bounds()
	return Result{
		SessionID:    req.sessionID,
		RequestID:    req.requestID,
		Quality:      req.quality,
		Data:         data,
		Size:         int64(len(data)),
		Width:        b.Dx(),
		Height:       b.Dy(),
		SourceFormat: format,
		Format:       r.enc.Format(),
		Extension:    r.enc.Extension(),
		MIMEType:     r.enc.MIMEType(),
		Flattened:    flattened,
		Digest:       hasher.Digest(data),
		Elapsed:      time.Since(start),
	}, nil
}

func stageError(st stage, name string, err error) error {
	switch st {
	case stageDecode:
		return fmt.Errorf("%w: decode %s: %w", ErrUnsupportedInput, name, err)
	case stageRender:
		return fmt.Errorf("%w: render %s: %w", ErrEncodeFailure, name, err)
	default:
		return fmt.Errorf("%w: encode %s: %w", ErrEncodeFailure, name, err)
	}
}

// render copies img onto a fresh canvas of identical size at (0,0).
// Opaque sources are a straight copy; translucent ones are composited
// over bg so the result is fully opaque.
func render(img image.Image, bg color.NRGBA) (*image.NRGBA, bool) {
	if !decoder.HasAlpha(img) {
		return imaging.Clone(img), false
	}
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0), true
}
