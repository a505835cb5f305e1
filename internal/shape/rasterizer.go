package shape

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
)

// Rasterize converts a shape element into a PNG data-URL at the element's
// unscaled size. The server-side PDF renderer only understands text, image
// and qrcode elements, so every shape must cross the export boundary as a
// flat bitmap.
//
// Failures never propagate: a shape that cannot be rasterized comes back as
// a fully transparent PNG of the same size so one bad element cannot block
// the rest of the certificate.
func Rasterize(el canvas.Element) string {
	w := int(el.Width)
	h := int(el.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	doc := BuildSVG(el)
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		log.Printf("shape rasterize: parse failed for %s: %v", el.ShapeType, err)
		return transparentPNG(w, h)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return encodePNG(img, w, h)
}

// BuildSVG emits the standalone SVG document that wraps the shape's path
// with its fill, stroke and opacity, sized exactly to the element.
func BuildSVG(el canvas.Element) string {
	w := el.Width
	h := el.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	var d string
	if el.ShapeType == canvas.ShapeRectangle && el.BorderRadius > 0 {
		d = RoundedRectPath(w, h, el.BorderRadius)
	} else {
		d = PathFor(el.ShapeType, w, h)
	}

	fill := el.FillColor
	if fill == "" {
		fill = "#000000"
	}
	if fill == "transparent" {
		fill = "none"
	}
	if el.ShapeType == canvas.ShapeLine {
		fill = "none"
	}

	opacity := el.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, n(w), n(h), n(w), n(h))
	fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-opacity="%s"`, d, fill, n(opacity))
	if el.StrokeColor != "" && el.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s" stroke-opacity="%s"`, el.StrokeColor, n(el.StrokeWidth), n(opacity))
	}
	b.WriteString(`/></svg>`)
	return b.String()
}

// ToImageElement rewrites a shape element as an image element carrying the
// rasterized PNG, keeping id, geometry and paint order intact. Non-shape
// elements are returned unchanged.
func ToImageElement(el canvas.Element) canvas.Element {
	if el.Type != canvas.TypeShape {
		return el
	}
	out := el
	out.Type = canvas.TypeImage
	out.ImageURL = Rasterize(el)
	out.ShapeType = ""
	out.FillColor = ""
	out.StrokeColor = ""
	out.StrokeWidth = 0
	out.BorderRadius = 0
	return out
}

func encodePNG(img image.Image, w, h int) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("shape rasterize: png encode failed: %v", err)
		return transparentPNG(w, h)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func transparentPNG(w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	// Encoding a blank RGBA cannot fail with a bytes.Buffer destination.
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
