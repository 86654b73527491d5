package editor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"frameup/internal/compositor"
	"frameup/internal/model"
)

// ImageInfo describes the loaded image file.
type ImageInfo struct {
	Path   string
	Name   string
	Width  int
	Height int
	Bytes  int64
}

// DecodeFile decodes a PNG, JPEG, GIF or WebP file, applying any EXIF
// orientation.
func DecodeFile(path string) (image.Image, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if img.Bounds().Empty() {
		return nil, 0, fmt.Errorf("decode %s: image has no pixels: %w", filepath.Base(path), model.ErrInvalid)
	}
	return img, size, nil
}

// LoadImage replaces the image with the file at path. Text layers are kept;
// the transform is reset.
func (s *Session) LoadImage(path string) error {
	img, size, err := DecodeFile(path)
	if err != nil {
		return err
	}
	s.SetImage(img, ImageInfo{Path: path, Name: filepath.Base(path), Bytes: size})
	return nil
}

// SetImage replaces the image with an already decoded one.
func (s *Session) SetImage(img image.Image, info ImageInfo) {
	s.source = compositor.NewSource(img)
	info.Width, info.Height = s.source.Width, s.source.Height
	if info.Name == "" {
		info.Name = filepath.Base(info.Path)
	}
	s.image = info
	s.pointer.Release()
	s.transform = model.IdentityTransform()
	s.touch()
	s.logger.Info("image loaded", "name", info.Name, "width", info.Width, "height", info.Height)
}

// Clear starts over with no image: the text layers and the layer id counter
// are cleared as well. Frames and styles stay.
func (s *Session) Clear() {
	s.source = nil
	s.image = ImageInfo{}
	s.layers = nil
	s.pending = nil
	s.nextLayerID = 1
	s.pointer.Release()
	s.transform = model.IdentityTransform()
	s.touch()
}
