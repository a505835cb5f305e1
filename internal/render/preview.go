package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/internal/shape"

	_ "image/gif"
	_ "image/jpeg"
)

// Previewer rasterizes a template into a PNG the admin UI can show without
// a client-side rendering pass. It paints the same render tree the editor
// consumes, so both surfaces agree on geometry.
type Previewer struct {
	fonts      *FontManager
	storageDir string
}

func NewPreviewer(storageDir string) *Previewer {
	return &Previewer{fonts: NewFontManager(), storageDir: storageDir}
}

// Render paints the template at the given container width and returns the
// encoded PNG. Rendering failures on individual elements degrade to neutral
// placeholder boxes; only an unencodable output is an error.
func (p *Previewer) Render(t *canvas.Template, rc canvas.RecipientContext, widthPx int, resolve ImageResolver) ([]byte, error) {
	if widthPx < 1 {
		widthPx = int(canvas.Width)
	}
	scale := Factor(float64(widthPx))
	heightPx := int(math.Round(canvas.Height * scale))

	img := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if t.BackgroundImage != "" {
		if bg := p.loadImage(t.BackgroundImage); bg != nil {
			xdraw.BiLinear.Scale(img, img.Bounds(), bg, bg.Bounds(), xdraw.Over, nil)
		}
	}

	for _, node := range Compose(t.Elements, rc, scale, resolve) {
		p.paint(img, node)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("preview encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Previewer) paint(dst *image.RGBA, node Node) {
	switch node.Kind {
	case canvas.TypeText:
		p.paintText(dst, node)
	case canvas.TypeImage, canvas.TypeQRCode:
		if node.Pending {
			p.paintPlaceholderBox(dst, node, "QR")
			return
		}
		src := p.loadImage(node.Src)
		if src == nil {
			p.paintPlaceholderBox(dst, node, "")
			return
		}
		p.paintBitmap(dst, src, node)
	case canvas.TypeShape:
		// Rasterize at unscaled size, then let the bitmap path apply the
		// container scale, same as the export boundary does.
		el := canvas.Element{
			Type: canvas.TypeShape, ShapeType: node.ShapeKind,
			Width: node.Width / node.Scale, Height: node.Height / node.Scale,
			FillColor: node.FillColor, StrokeColor: node.StrokeColor,
			StrokeWidth: node.StrokeWidth, Opacity: node.Opacity,
			BorderRadius: node.BorderRadius,
		}
		if src := p.loadImage(shape.Rasterize(el)); src != nil {
			p.paintBitmap(dst, src, node)
		}
	}
}

func (p *Previewer) paintText(dst *image.RGBA, node Node) {
	face, err := p.fonts.Face(node.FontWeight, node.FontStyle, node.FontSize)
	if err != nil {
		log.Printf("preview: font face: %v", err)
		return
	}
	metrics := face.Metrics()
	width := font.MeasureString(face, node.Text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	x := int(node.X) + int(float64(width)*node.AnchorShift)

	if isIdentityTransform(node) {
		drawer := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(parseHexColor(node.Color)),
			Face: face,
			Dot:  fixed.P(x, int(node.Y)+metrics.Ascent.Ceil()),
		}
		drawer.DrawString(node.Text)
		return
	}

	// Rotated or scaled text: rasterize the line on its own, then transform
	// the bitmap like any other.
	if width < 1 || height < 1 {
		return
	}
	line := image.NewRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  line,
		Src:  image.NewUniform(parseHexColor(node.Color)),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	drawer.DrawString(node.Text)
	p.transformDraw(dst, line, node, float64(x), node.Y, float64(width), float64(height))
}

func (p *Previewer) paintBitmap(dst *image.RGBA, src image.Image, node Node) {
	if isIdentityTransform(node) {
		rect := image.Rect(int(node.X), int(node.Y), int(node.X+node.Width), int(node.Y+node.Height))
		xdraw.BiLinear.Scale(dst, rect, src, src.Bounds(), xdraw.Over, nil)
		return
	}
	p.transformDraw(dst, src, node, node.X, node.Y, node.Width, node.Height)
}

func isIdentityTransform(node Node) bool {
	return node.Rotation == 0 && node.ScaleX == 1 && node.ScaleY == 1
}

// transformDraw paints src into the w×h box at (x, y) with the node's
// rotation and scale applied about the box center, the same transform origin
// the editor uses.
func (p *Previewer) transformDraw(dst *image.RGBA, src image.Image, node Node, x, y, w, h float64) {
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 || w <= 0 || h <= 0 {
		return
	}
	sx, sy := node.ScaleX, node.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	kx := w / sw * sx
	ky := h / sh * sy
	rad := node.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	a, b := cos*kx, -sin*ky
	d, e := sin*kx, cos*ky

	// Source center maps onto the box center.
	scx := float64(sb.Min.X) + sw/2
	scy := float64(sb.Min.Y) + sh/2
	cx := x + w/2
	cy := y + h/2

	m := f64.Aff3{
		a, b, cx - a*scx - b*scy,
		d, e, cy - d*scx - e*scy,
	}
	xdraw.BiLinear.Transform(dst, m, src, sb, xdraw.Over, nil)
}

func (p *Previewer) paintPlaceholderBox(dst *image.RGBA, node Node, caption string) {
	rect := image.Rect(int(node.X), int(node.Y), int(node.X+node.Width), int(node.Y+node.Height))
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{230, 230, 230, 255}}, image.Point{}, draw.Over)
	if caption != "" {
		if face, err := p.fonts.Face("", "", 12); err == nil {
			drawer := &font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(color.RGBA{120, 120, 120, 255}),
				Face: face,
				Dot:  fixed.P(rect.Min.X+4, rect.Min.Y+14),
			}
			drawer.DrawString(caption)
		}
	}
}

// loadImage resolves a node source into a decoded image: data-URLs inline,
// anything pointing at the storage dir from disk. Unresolvable sources
// return nil and the caller paints a placeholder.
func (p *Previewer) loadImage(src string) image.Image {
	if src == "" {
		return nil
	}
	if strings.HasPrefix(src, "data:") {
		idx := strings.Index(src, "base64,")
		if idx < 0 {
			return nil
		}
		raw, err := base64.StdEncoding.DecodeString(src[idx+len("base64,"):])
		if err != nil {
			log.Printf("preview: bad data url: %v", err)
			return nil
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			log.Printf("preview: decode data url: %v", err)
			return nil
		}
		return img
	}

	rel := src
	if i := strings.Index(rel, "/storage/"); i >= 0 {
		rel = rel[i+len("/storage/"):]
	}
	rel = strings.TrimPrefix(rel, "storage/")
	f, err := os.Open(filepath.Join(p.storageDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		log.Printf("preview: decode %s: %v", rel, err)
		return nil
	}
	return img
}

func parseHexColor(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(string(hex[0]), 2) + strings.Repeat(string(hex[1]), 2) + strings.Repeat(string(hex[2]), 2)
	}
	if len(hex) != 6 {
		return color.RGBA{0, 0, 0, 255}
	}
	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}
