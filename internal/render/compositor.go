// Package render turns an element list plus recipient data into output:
// a pure render tree for the editor surface and a rasterized PNG preview.
package render

import (
	"fmt"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/internal/qr"
	"github.com/davyaugustnurismail/ukk-sub001/internal/shape"
)

// Node is one paintable item in the render tree. All geometry is already
// scaled to the target container; the transform carries rotation and the
// element's own scale, which are container-independent.
type Node struct {
	ID     string
	Kind   canvas.ElementType
	ZIndex int

	X, Y          float64
	Width, Height float64

	// Text nodes.
	Text       string
	FontSize   float64
	FontFamily string
	FontWeight string
	FontStyle  string
	TextAlign  string
	Color      string
	// Anchor shift as a fraction of rendered text width (0, -0.5 or -1).
	AnchorShift float64

	// Image and qrcode nodes.
	Src string
	// Pending marks a qrcode whose bitmap is not available yet; the painter
	// draws a neutral captioned box instead of leaving a hole.
	Pending bool

	// Shape nodes carry the path at unscaled size; Scale is then applied as
	// a container transform so stroke width does not distort.
	ShapeKind    canvas.ShapeType
	Path         string
	FillColor    string
	StrokeColor  string
	StrokeWidth  float64
	Opacity      float64
	BorderRadius float64

	Scale float64

	// Rotation (degrees) and the element's own scale, about the box center.
	// Transform is the same data as a CSS transform string for tree
	// consumers; the raster painter uses the numeric fields.
	Rotation  float64
	ScaleX    float64
	ScaleY    float64
	Transform string
}

// ImageResolver normalizes a stored image URL into something the output
// surface can load. The backend client provides the production
// implementation; tests pass the identity function.
type ImageResolver func(raw string) string

// Compose builds the render tree for one container scale. It is read-only
// over its inputs: elements are walked in stable ascending z-order, hidden
// elements are skipped, text is resolved against the recipient context, and
// each node carries everything the painter needs.
func Compose(elements []canvas.Element, rc canvas.RecipientContext, scale float64, resolve ImageResolver) []Node {
	if scale <= 0 {
		scale = 1
	}
	if resolve == nil {
		resolve = func(raw string) string { return raw }
	}

	nodes := make([]Node, 0, len(elements))
	for _, el := range canvas.SortedByZ(elements) {
		if !el.IsVisible {
			continue
		}
		sx, sy := el.ScaleX, el.ScaleY
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		node := Node{
			ID:        el.ID,
			Kind:      el.Type,
			ZIndex:    el.ZIndex,
			X:         el.X * scale,
			Y:         el.Y * scale,
			Width:     el.Width * scale,
			Height:    el.Height * scale,
			Scale:     scale,
			Rotation:  el.Rotation,
			ScaleX:    sx,
			ScaleY:    sy,
			Transform: transformFor(el),
		}

		switch el.Type {
		case canvas.TypeText:
			node.Text = canvas.Resolve(el, rc)
			node.FontSize = el.FontSize * scale
			node.FontFamily = el.FontFamily
			node.FontWeight = el.FontWeight
			node.FontStyle = el.FontStyle
			node.TextAlign = el.TextAlign
			node.Color = el.Color
			node.AnchorShift = AlignShift(el.TextAlign)
		case canvas.TypeImage:
			node.Src = resolve(el.ImageURL)
		case canvas.TypeQRCode:
			if el.ImageURL != "" {
				node.Src = resolve(el.ImageURL)
			} else if el.Data != "" {
				node.Src = qr.GenerateDataURL(el.Data, qrPixelSize(el))
			} else {
				node.Pending = true
			}
		case canvas.TypeShape:
			// Path at unscaled size; Scale/Transform carry the zoom.
			node.ShapeKind = el.ShapeType
			if el.ShapeType == canvas.ShapeRectangle && el.BorderRadius > 0 {
				node.Path = shape.RoundedRectPath(el.Width, el.Height, el.BorderRadius)
			} else {
				node.Path = shape.PathFor(el.ShapeType, el.Width, el.Height)
			}
			node.FillColor = el.FillColor
			node.StrokeColor = el.StrokeColor
			node.StrokeWidth = el.StrokeWidth
			node.Opacity = el.Opacity
			node.BorderRadius = el.BorderRadius
		default:
			continue
		}

		nodes = append(nodes, node)
	}
	return nodes
}

func transformFor(el canvas.Element) string {
	t := ""
	if el.Rotation != 0 {
		t = fmt.Sprintf("rotate(%gdeg)", el.Rotation)
	}
	if el.ScaleX != 1 || el.ScaleY != 1 {
		if t != "" {
			t += " "
		}
		t += fmt.Sprintf("scale(%g, %g)", el.ScaleX, el.ScaleY)
	}
	return t
}

func qrPixelSize(el canvas.Element) int {
	size := int(el.Width)
	if int(el.Height) > size {
		size = int(el.Height)
	}
	if size < 1 {
		size = 1
	}
	return size
}
