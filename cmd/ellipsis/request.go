package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lineclamp/pkg/ellipsis"
	"lineclamp/pkg/text"
)

// Request is the YAML form of a truncation. Command-line flags override
// the fields they name.
//
//	target: "#title"
//	rows: 2
//	suffix: <a href="/more">more</a>
//	patch:
//	  line-height: 20px
//	viewport: {width: 1024, height: 768}
//	fonts: {source: go}
type Request struct {
	Target   string            `yaml:"target"`
	Rows     int               `yaml:"rows"`
	Symbol   string            `yaml:"symbol"`
	Suffix   string            `yaml:"suffix"`
	Content  *string           `yaml:"content"`
	Patch    map[string]string `yaml:"patch"`
	CSS      *bool             `yaml:"css"`
	Debug    bool              `yaml:"debug"`
	Viewport Viewport          `yaml:"viewport"`
	Fonts    Fonts             `yaml:"fonts"`
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Fonts struct {
	// Source is "basic" (default), "go" or "files".
	Source     string `yaml:"source"`
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
	Monospace  string `yaml:"monospace"`
}

// LoadRequest reads a request file. Unknown fields are an error.
func LoadRequest(path string) (Request, error) {
	var req Request
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("reading request: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("parsing request %s: %w", path, err)
	}
	return req, nil
}

func (r Request) options() ellipsis.Options {
	return ellipsis.Options{
		Selector:       r.Target,
		Rows:           r.Rows,
		EllipsisSymbol: r.Symbol,
		Content:        r.Content,
		Suffix:         r.Suffix,
		PatchStyle:     r.Patch,
		UseCSS:         r.CSS,
		Debug:          r.Debug,
	}
}

func (r Request) viewport() (float64, float64) {
	w, h := r.Viewport.Width, r.Viewport.Height
	if w <= 0 {
		w = ellipsis.DefaultViewportWidth
	}
	if h <= 0 {
		h = ellipsis.DefaultViewportHeight
	}
	return float64(w), float64(h)
}

func (f Fonts) config() (text.FontConfig, error) {
	cfg := text.FontConfig{
		Regular:    f.Regular,
		Bold:       f.Bold,
		Italic:     f.Italic,
		BoldItalic: f.BoldItalic,
		Monospace:  f.Monospace,
	}
	switch f.Source {
	case "", "basic":
		cfg.Source = text.SourceBasic
	case "go":
		cfg.Source = text.SourceGo
	case "files":
		cfg.Source = text.SourceFiles
	default:
		return cfg, fmt.Errorf("unknown font source %q", f.Source)
	}
	return cfg, nil
}

// requestFlags are the flags shared by the commands that truncate.
type requestFlags struct {
	file    string
	target  string
	rows    int
	symbol  string
	suffix  string
	content string
	patch   map[string]string
	noCSS   bool
	debug   bool
	width   int
	height  int
	fonts   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.file, "request", "", "YAML request file")
	fl.StringVarP(&f.target, "target", "t", "", "Selector of the element to truncate")
	fl.IntVarP(&f.rows, "rows", "r", ellipsis.DefaultRows, "Number of lines to keep")
	fl.StringVar(&f.symbol, "symbol", ellipsis.DefaultSymbol, "Ellipsis marker")
	fl.StringVar(&f.suffix, "suffix", "", "Markup placed after the ellipsis")
	fl.StringVar(&f.content, "content", "", "Markup to truncate instead of the target's own")
	fl.StringToStringVar(&f.patch, "patch", nil, "Style overrides for the measuring container (prop=value)")
	fl.BoolVar(&f.noCSS, "no-css", false, "Always measure, never use CSS truncation")
	fl.BoolVar(&f.debug, "debug", false, "Lay the measuring container out on screen")
	fl.IntVar(&f.width, "width", 0, "Viewport width")
	fl.IntVar(&f.height, "height", 0, "Viewport height")
	fl.StringVar(&f.fonts, "fonts", "", "Font source: basic, go or files")
}

// resolve loads the request file, if any, and applies the flags that were
// set on the command line.
func (f *requestFlags) resolve(cmd *cobra.Command) (Request, error) {
	var req Request
	if f.file != "" {
		var err error
		if req, err = LoadRequest(f.file); err != nil {
			return req, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("target") {
		req.Target = f.target
	}
	if changed("rows") || req.Rows == 0 {
		req.Rows = f.rows
	}
	if changed("symbol") || req.Symbol == "" {
		req.Symbol = f.symbol
	}
	if changed("suffix") {
		req.Suffix = f.suffix
	}
	if changed("content") {
		content := f.content
		req.Content = &content
	}
	if changed("patch") {
		if req.Patch == nil {
			req.Patch = make(map[string]string)
		}
		for k, v := range f.patch {
			req.Patch[k] = v
		}
	}
	if changed("no-css") {
		useCSS := !f.noCSS
		req.CSS = &useCSS
	}
	if changed("debug") {
		req.Debug = f.debug
	}
	if changed("width") {
		req.Viewport.Width = f.width
	}
	if changed("height") {
		req.Viewport.Height = f.height
	}
	if changed("fonts") {
		req.Fonts.Source = f.fonts
	}
	if req.Target == "" {
		return req, fmt.Errorf("no target: set --target or target in the request file")
	}
	return req, nil
}
