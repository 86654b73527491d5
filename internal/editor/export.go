package editor

import (
	"context"
	"fmt"

	"frameup/internal/export"
	"frameup/internal/model"
)

// ExportJob runs an export against a scene snapshot. It may run on any
// goroutine.
type ExportJob func(ctx context.Context) ([]export.Result, error)

// ExportAll snapshots the scene and returns a job that exports every
// visible frame through p.
func (s *Session) ExportAll(p *export.Pipeline, progress func(export.Result)) (ExportJob, error) {
	if s.source == nil {
		return nil, ErrNoImage
	}
	scene := s.Scene()
	if len(scene.Frames) == 0 {
		return nil, fmt.Errorf("no visible frames: %w", model.ErrInvalid)
	}
	return func(ctx context.Context) ([]export.Result, error) {
		return p.ExportAll(ctx, scene, progress)
	}, nil
}

// ExportFrame snapshots the scene and returns a job that exports one frame.
func (s *Session) ExportFrame(p *export.Pipeline, frameID string) (ExportJob, error) {
	if s.source == nil {
		return nil, ErrNoImage
	}
	i := s.frameIndex(frameID)
	if i < 0 {
		return nil, fmt.Errorf("frame %q: %w", frameID, model.ErrNotFound)
	}
	if !s.frames[i].Visible {
		return nil, fmt.Errorf("frame %q is hidden: %w", frameID, model.ErrInvalid)
	}
	scene := s.Scene()
	return func(ctx context.Context) ([]export.Result, error) {
		res := p.ExportFrame(ctx, scene, frameID)
		return []export.Result{res}, res.Err
	}, nil
}
