package text

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSource selects where glyph faces come from.
type FontSource int

const (
	// SourceBasic uses the 7x13 bitmap face scaled to the requested size.
	// Every glyph advances 7/13 em, which makes layout results exact and
	// reproducible on any machine.
	SourceBasic FontSource = iota
	// SourceGo uses the embedded Go font family.
	SourceGo
	// SourceFiles loads TrueType files from the paths in FontConfig.
	SourceFiles
)

const basicCellSize = 13.0

// FontConfig holds the font selection used for text measurement and rendering.
type FontConfig struct {
	Source     FontSource
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
}

// DefaultFontConfig returns the deterministic bitmap configuration.
func DefaultFontConfig() FontConfig {
	return FontConfig{Source: SourceBasic}
}

// FontPath returns the font path for the given style combination.
func (fc FontConfig) FontPath(bold, italic, mono bool) string {
	if mono && fc.Monospace != "" {
		return fc.Monospace
	}
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

// FontSpec describes the face a run of text is set in.
type FontSpec struct {
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
}

// Measurer measures strings against cached font faces. It is safe for
// concurrent use.
type Measurer struct {
	config FontConfig

	mu     sync.Mutex
	dc     *gg.Context
	faces  map[FontSpec]font.Face
	parsed map[string]*truetype.Font
}

// NewMeasurer returns a measurer for the configuration. With SourceFiles
// the regular face must load.
func NewMeasurer(config FontConfig) (*Measurer, error) {
	m := &Measurer{
		config: config,
		dc:     gg.NewContext(1, 1),
		faces:  make(map[FontSpec]font.Face),
		parsed: make(map[string]*truetype.Font),
	}
	if config.Source == SourceFiles {
		if config.Regular == "" {
			return nil, fmt.Errorf("font config: no regular font file")
		}
		if _, err := gg.LoadFontFace(config.Regular, basicCellSize); err != nil {
			return nil, fmt.Errorf("loading font %s: %w", config.Regular, err)
		}
	}
	return m, nil
}

var defaultMeasurer, _ = NewMeasurer(DefaultFontConfig())

// Default returns the shared measurer over the bitmap face.
func Default() *Measurer {
	return defaultMeasurer
}

// Face returns the face for spec and the factor its metrics must be
// multiplied by. The factor is 1 except for the scaled bitmap face.
func (m *Measurer) Face(spec FontSpec) (font.Face, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face(spec)
}

func (m *Measurer) face(spec FontSpec) (font.Face, float64) {
	if spec.Size <= 0 {
		spec.Size = 16
	}
	if m.config.Source == SourceBasic {
		return basicfont.Face7x13, spec.Size / basicCellSize
	}
	if face, ok := m.faces[spec]; ok {
		return face, 1
	}
	face, err := m.loadFace(spec)
	if err != nil {
		return basicfont.Face7x13, spec.Size / basicCellSize
	}
	m.faces[spec] = face
	return face, 1
}

func (m *Measurer) loadFace(spec FontSpec) (font.Face, error) {
	if m.config.Source == SourceFiles {
		path := m.config.FontPath(spec.Bold, spec.Italic, spec.Mono)
		return gg.LoadFontFace(path, spec.Size)
	}

	var ttf []byte
	switch {
	case spec.Mono:
		ttf = gomono.TTF
	case spec.Bold && spec.Italic:
		ttf = gobolditalic.TTF
	case spec.Bold:
		ttf = gobold.TTF
	case spec.Italic:
		ttf = goitalic.TTF
	default:
		ttf = goregular.TTF
	}
	key := fmt.Sprintf("go:%t:%t:%t", spec.Bold, spec.Italic, spec.Mono)
	f, ok := m.parsed[key]
	if !ok {
		var err error
		f, err = truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing Go font: %w", err)
		}
		m.parsed[key] = f
	}
	return truetype.NewFace(f, &truetype.Options{Size: spec.Size}), nil
}

// Advance returns the horizontal advance of s in pixels.
func (m *Measurer) Advance(s string, spec FontSpec) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	face, scale := m.face(spec)
	m.dc.SetFontFace(face)
	w, _ := m.dc.MeasureString(s)
	return w * scale
}

// Metrics returns the ascent and descent of the face in pixels.
func (m *Measurer) Metrics(spec FontSpec) (ascent, descent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	face, scale := m.face(spec)
	metrics := face.Metrics()
	return float64(metrics.Ascent) / 64 * scale, float64(metrics.Descent) / 64 * scale
}
