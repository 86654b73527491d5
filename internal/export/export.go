// Package export renders every visible frame at full resolution and hands
// the encoded PNGs to a sink, one frame at a time.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"

	"frameup/internal/atomicfile"
	"frameup/internal/compositor"
)

// DefaultDelay separates two deliveries of a batch.
const DefaultDelay = 100 * time.Millisecond

// ErrNoSurface is reported for a frame whose export surface has no pixels.
var ErrNoSurface = compositor.ErrNoSurface

// Sink receives encoded exports. Deliver returns where the data ended up.
type Sink interface {
	Deliver(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes exports into a directory.
type DirSink struct {
	Dir string
}

func (s DirSink) Deliver(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, name)
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Result describes the outcome for one frame.
type Result struct {
	FrameID  string
	Name     string
	Location string
	Width    int
	Height   int
	Bytes    int
	Err      error
}

// OK reports whether the frame was delivered.
func (r Result) OK() bool { return r.Err == nil }

// Pipeline renders and delivers exports.
type Pipeline struct {
	comp    *compositor.Compositor
	sink    Sink
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a pipeline. A delay of zero or less delivers without pauses.
func New(comp *compositor.Compositor, sink Sink, delay time.Duration, logger *slog.Logger) *Pipeline {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pipeline{
		comp:    comp,
		sink:    sink,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "export"),
	}
}

// FileName is the delivered name of a frame export.
func FileName(frameID string, width, height int) string {
	id := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, frameID)
	return fmt.Sprintf("%s-%dx%d.png", id, width, height)
}

// ExportFrame renders and delivers a single frame.
func (p *Pipeline) ExportFrame(ctx context.Context, scene compositor.Scene, frameID string) Result {
	return p.export(ctx, p.comp.Fork(), scene, frameID)
}

// ExportAll delivers every frame of the scene in order, waiting on the
// limiter before each one. A failing frame is logged and recorded and the
// batch moves on; cancelling ctx stops the remaining frames. progress, when
// non-nil, sees each result as it completes. The returned error joins every
// frame failure.
func (p *Pipeline) ExportAll(ctx context.Context, scene compositor.Scene, progress func(Result)) ([]Result, error) {
	comp := p.comp.Fork()
	layout := scene.Layout(comp.Reference())
	if len(layout.Frames) == 0 {
		return nil, compositor.ErrEmptyScene
	}

	results := make([]Result, 0, len(layout.Frames))
	var errs []error
	for _, fl := range layout.Frames {
		if err := p.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("export cancelled before %q: %w", fl.Frame.ID, err))
			break
		}
		res := p.export(ctx, comp, scene, fl.Frame.ID)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		if progress != nil {
			progress(res)
		}
	}
	return results, errors.Join(errs...)
}

func (p *Pipeline) export(ctx context.Context, comp *compositor.Compositor, scene compositor.Scene, frameID string) (res Result) {
	res.FrameID = frameID
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("frame %q: render panic: %v", frameID, r)
		}
		if res.Err != nil {
			p.logger.Error("export failed", "frame", frameID, "error", res.Err)
		}
	}()

	fl, ok := scene.Layout(comp.Reference()).Find(frameID)
	if ok {
		res.Width, res.Height = fl.Export.Width, fl.Export.Height
		res.Name = FileName(frameID, fl.Export.Width, fl.Export.Height)
	}

	img, err := comp.RenderImage(scene, compositor.Options{Mode: compositor.ModeExport, FrameID: frameID})
	if err != nil {
		res.Err = fmt.Errorf("frame %q: %w", frameID, err)
		return res
	}
	data, err := EncodePNG(img)
	if err != nil {
		res.Err = fmt.Errorf("frame %q: %w", frameID, err)
		return res
	}
	loc, err := p.sink.Deliver(ctx, res.Name, data)
	if err != nil {
		res.Err = fmt.Errorf("frame %q: deliver: %w", frameID, err)
		return res
	}

	res.Location, res.Bytes = loc, len(data)
	p.logger.Info("exported frame", "frame", frameID, "location", loc, "width", res.Width, "height", res.Height, "bytes", res.Bytes)
	return res
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoSurface
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes in a data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
