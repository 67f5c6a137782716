package render

import (
	"image"
	"io"
	"sort"
	"strconv"

	"github.com/fogleman/gg"

	"lineclamp/pkg/css"
	"lineclamp/pkg/images"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/text"
)

// ellipsisMarker is painted for text-overflow: ellipsis and line clamping.
// The bitmap face has no glyph for U+2026.
const ellipsisMarker = "..."

type Renderer struct {
	context  *gg.Context
	measurer *text.Measurer
	images   *images.Cache
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), measurer: text.Default()}
}

// SetMeasurer sets the fonts text is drawn with. It must match the
// measurer the layout ran with.
func (r *Renderer) SetMeasurer(m *text.Measurer) {
	r.measurer = m
}

// SetImages sets where <img> sources are loaded from. Without a cache
// images paint as their box only.
func (r *Renderer) SetImages(c *images.Cache) {
	r.images = c
}

// Render paints the box tree rooted at root onto a white canvas.
func (r *Renderer) Render(root *layout.Box) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	if root != nil {
		r.drawTree(root)
	}
}

func (r *Renderer) drawTree(box *layout.Box) {
	if box.Style != nil && !box.Style.IsHidden() {
		r.drawBox(box)
		r.drawImage(box)
	}
	for _, child := range box.Children {
		r.drawTree(child)
	}
	r.drawLines(box)

	// positioned boxes paint last, in z-index order
	oof := append([]*layout.Box(nil), box.OutOfFlow...)
	sort.SliceStable(oof, func(i, j int) bool {
		return zIndex(oof[i]) < zIndex(oof[j])
	})
	for _, child := range oof {
		r.drawTree(child)
	}
}

func zIndex(box *layout.Box) int {
	z, err := strconv.Atoi(box.Style.Value("z-index"))
	if err != nil {
		return 0
	}
	return z
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, c.A)
}

func (r *Renderer) drawBox(box *layout.Box) {
	// Background covers content + padding (but not margin or border)
	if color, ok := css.ParseColor(box.Style.Value("background-color")); ok && color.A > 0 {
		bg := box.BorderBox()
		bgX := bg.X + box.Border.Left
		bgY := bg.Y + box.Border.Top
		bgWidth := box.Width + box.Padding.Left + box.Padding.Right
		bgHeight := box.Height + box.Padding.Top + box.Padding.Bottom
		if bgWidth > 0 && bgHeight > 0 {
			r.setColor(color)
			r.context.DrawRectangle(bgX, bgY, bgWidth, bgHeight)
			r.context.Fill()
		}
	}
	r.drawBorder(box)
}

// drawImage scales the image of an <img> box into its content box. Images
// that fail to load are skipped.
func (r *Renderer) drawImage(box *layout.Box) {
	if r.images == nil || box.Node == nil || box.Node.TagName != "img" {
		return
	}
	src, ok := box.Node.GetAttribute("src")
	if !ok || src == "" || box.Width <= 0 || box.Height <= 0 {
		return
	}
	img, err := r.images.Load(src)
	if err != nil {
		return
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	content := box.ContentBox()
	r.context.Push()
	r.context.Translate(content.X, content.Y)
	r.context.Scale(box.Width/float64(bounds.Dx()), box.Height/float64(bounds.Dy()))
	r.context.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
	r.context.Pop()
}

func (r *Renderer) drawBorder(box *layout.Box) {
	bb := box.BorderBox()
	sides := []struct {
		name       string
		width      float64
		x, y, w, h float64
	}{
		{"top", box.Border.Top, bb.X, bb.Y, bb.Width, box.Border.Top},
		{"right", box.Border.Right, bb.X + bb.Width - box.Border.Right, bb.Y, box.Border.Right, bb.Height},
		{"bottom", box.Border.Bottom, bb.X, bb.Y + bb.Height - box.Border.Bottom, bb.Width, box.Border.Bottom},
		{"left", box.Border.Left, bb.X, bb.Y, box.Border.Left, bb.Height},
	}
	for _, side := range sides {
		if side.width <= 0 {
			continue
		}
		color, ok := css.ParseColor(box.Style.Value("border-" + side.name + "-color"))
		if !ok {
			color = box.Style.GetColor()
		}
		r.setColor(color)
		r.context.DrawRectangle(side.x, side.y, side.w, side.h)
		r.context.Fill()
	}
}

// drawLines paints the inline content of box, honouring line clamping and
// text-overflow: ellipsis.
func (r *Renderer) drawLines(box *layout.Box) {
	overflowEllipsis := box.Style.Value("text-overflow") == "ellipsis" && box.Style.Value("overflow") != "visible"
	for i, line := range box.LineBoxes {
		if box.ClampedAt > 0 && i >= box.ClampedAt {
			return
		}
		clampEnd := box.ClampedAt > 0 && i == box.ClampedAt-1
		limit := box.ContentBox().X + box.Width
		if clampEnd || (overflowEllipsis && line.X+line.Width > limit+0.01) {
			r.drawTruncatedLine(line, limit)
			continue
		}
		for _, f := range line.Fragments {
			r.drawFragment(f, f.Text)
		}
	}
}

func (r *Renderer) drawFragment(f *layout.InlineFragment, s string) {
	if f.Box != nil {
		r.drawTree(f.Box)
		return
	}
	if s == "" || f.Style.IsHidden() {
		return
	}
	spec := layout.FontSpec(f.Style)
	face, scale := r.measurer.Face(spec)
	ascent, descent := r.measurer.Metrics(spec)
	baseline := f.Y + (f.Height-(ascent+descent))/2 + ascent

	r.setColor(f.Style.GetColor())
	r.context.Push()
	r.context.Translate(f.X, baseline)
	r.context.Scale(scale, scale)
	r.context.SetFontFace(face)
	r.context.DrawString(s, 0, 0)
	r.context.Pop()
}

// drawTruncatedLine paints as much of line as fits before limit together
// with the ellipsis marker.
func (r *Renderer) drawTruncatedLine(line *layout.LineBox, limit float64) {
	for i, f := range line.Fragments {
		if f.Box != nil {
			if f.X+f.Width > limit {
				return
			}
			r.drawFragment(f, "")
			continue
		}
		spec := layout.FontSpec(f.Style)
		markerWidth := r.measurer.Advance(ellipsisMarker, spec)
		if i < len(line.Fragments)-1 && f.X+f.Width+markerWidth <= limit {
			r.drawFragment(f, f.Text)
			continue
		}
		r.drawFragment(f, fitPrefix(r.measurer, f.Text, spec, limit-f.X-markerWidth)+ellipsisMarker)
		return
	}
}

// fitPrefix returns the longest grapheme prefix of s no wider than avail.
func fitPrefix(m *text.Measurer, s string, spec text.FontSpec, avail float64) string {
	clusters := text.Graphemes(s)
	n := 0
	for n < len(clusters) && m.Advance(text.Prefix(clusters, n+1), spec) <= avail {
		n++
	}
	return text.Prefix(clusters, n)
}

// Image returns the rendered canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}
