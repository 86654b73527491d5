// Package fonts resolves a font family plus bold/italic flags to a sized
// font.Face. The Go font family is embedded; extra TrueType files can be
// picked up from a directory.
package fonts

import (
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// DefaultFamily is used for empty and unknown family names.
const DefaultFamily = "Go"

type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
)

func variantOf(isBold, isItalic bool) variant {
	switch {
	case isBold && isItalic:
		return boldItalic
	case isBold:
		return bold
	case isItalic:
		return italic
	default:
		return regular
	}
}

type faceKey struct {
	family  string
	variant variant
	size    int // hundredths of a point
}

// Registry owns parsed fonts and a cache of sized faces. The faces it hands
// out cache glyphs and must stay on one goroutine; use Fork to give another
// goroutine its own cache over the same parsed fonts.
type Registry struct {
	mu       sync.Mutex
	families map[string]map[variant]*truetype.Font
	faces    map[faceKey]font.Face
	warned   map[string]bool
	logger   *slog.Logger
}

// NewRegistry loads the embedded Go fonts and, when dir is not empty, every
// .ttf file below it. A file named "Family-BoldItalic.ttf" registers the
// bold italic variant of "Family".
func NewRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		families: make(map[string]map[variant]*truetype.Font),
		faces:    make(map[faceKey]font.Face),
		warned:   make(map[string]bool),
		logger:   logger,
	}

	builtin := []struct {
		family  string
		variant variant
		ttf     []byte
	}{
		{"Go", regular, goregular.TTF},
		{"Go", bold, gobold.TTF},
		{"Go", italic, goitalic.TTF},
		{"Go", boldItalic, gobolditalic.TTF},
		{"Go Medium", regular, gomedium.TTF},
		{"Go Medium", italic, gomediumitalic.TTF},
		{"Go Mono", regular, gomono.TTF},
		{"Go Mono", bold, gomonobold.TTF},
		{"Go Mono", italic, gomonoitalic.TTF},
		{"Go Mono", boldItalic, gomonobolditalic.TTF},
		{"Go Smallcaps", regular, gosmallcaps.TTF},
		{"Go Smallcaps", italic, gosmallcapsitalic.TTF},
	}
	for _, b := range builtin {
		f, err := truetype.Parse(b.ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded font %s: %w", b.family, err)
		}
		r.add(b.family, b.variant, f)
	}

	if dir != "" {
		if err := r.loadDir(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("loading fonts from %s: %w", dir, err)
		}
	}
	return r, nil
}

func (r *Registry) add(family string, v variant, f *truetype.Font) {
	vs, ok := r.families[family]
	if !ok {
		vs = make(map[variant]*truetype.Font)
		r.families[family] = vs
	}
	vs[v] = f
}

func (r *Registry) loadDir(fsys fs.FS) error {
	matches, err := doublestar.Glob(fsys, "**/*.{ttf,TTF}")
	if err != nil {
		return err
	}
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			r.logger.Warn("skipping unreadable font", "file", m, "error", err)
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			r.logger.Warn("skipping unparseable font", "file", m, "error", err)
			continue
		}
		family, v := splitFileName(path.Base(m))
		r.add(family, v, f)
		r.logger.Debug("font registered", "family", family, "file", m)
	}
	return nil
}

// splitFileName turns "Inter-BoldItalic.ttf" into ("Inter", boldItalic).
func splitFileName(name string) (string, variant) {
	name = strings.TrimSuffix(name, path.Ext(name))
	suffixes := []struct {
		suffix  string
		variant variant
	}{
		{"-BoldItalic", boldItalic},
		{"-BoldOblique", boldItalic},
		{"-Bold", bold},
		{"-Italic", italic},
		{"-Oblique", italic},
		{"-Regular", regular},
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return strings.TrimSuffix(name, s.suffix), s.variant
		}
	}
	return name, regular
}

// Fork returns a registry sharing r's parsed fonts with an empty face cache.
func (r *Registry) Fork() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	families := make(map[string]map[variant]*truetype.Font, len(r.families))
	for name, vs := range r.families {
		families[name] = vs
	}
	return &Registry{
		families: families,
		faces:    make(map[faceKey]font.Face),
		warned:   make(map[string]bool),
		logger:   r.logger,
	}
}

// Families lists the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.families))
	for name := range r.families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.families[family]
	return ok
}

// Face returns a face for the family and style at size pixels. Missing
// families fall back to DefaultFamily; missing variants fall back to the
// family's regular face.
func (r *Registry) Face(family string, isBold, isItalic bool, size float64) font.Face {
	r.mu.Lock()
	defer r.mu.Unlock()

	vs, ok := r.families[family]
	if !ok {
		if family != "" && !r.warned[family] {
			r.warned[family] = true
			r.logger.Warn("unknown font family, using default", "family", family, "default", DefaultFamily)
		}
		family = DefaultFamily
		vs = r.families[family]
	}

	v := variantOf(isBold, isItalic)
	f, ok := vs[v]
	if !ok {
		switch {
		case v == boldItalic && vs[bold] != nil:
			v, f = bold, vs[bold]
		case v == boldItalic && vs[italic] != nil:
			v, f = italic, vs[italic]
		default:
			v, f = regular, vs[regular]
		}
	}
	if f == nil {
		for alt, af := range vs {
			v, f = alt, af
			break
		}
	}

	key := faceKey{family: family, variant: v, size: int(math.Round(size * 100))}
	if face, ok := r.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = face
	return face
}
