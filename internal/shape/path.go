// Package shape produces SVG path data for the canvas shape kinds and
// rasterizes shape elements into flat PNG images for the PDF boundary.
package shape

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
)

// PathFor returns the SVG path data for a shape kind inside a w×h bounding
// box. The vertex ratios are fixed per kind; existing templates depend on
// them, so they must not drift. Unknown kinds fall back to rectangle.
func PathFor(kind canvas.ShapeType, w, h float64) string {
	switch kind {
	case canvas.ShapeCircle:
		// Full ellipse built from two arc commands. Not a true circle for
		// non-square boxes; visually indistinguishable at editor sizes.
		return fmt.Sprintf("M0,%s A%s,%s 0 1,0 %s,%s A%s,%s 0 1,0 0,%s Z",
			n(h/2), n(w/2), n(h/2), n(w), n(h/2), n(w/2), n(h/2), n(h/2))
	case canvas.ShapeTriangle:
		return poly([][2]float64{{w / 2, 0}, {w, h}, {0, h}})
	case canvas.ShapeDiamond:
		return poly([][2]float64{{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2}})
	case canvas.ShapeStar:
		return poly([][2]float64{
			{0.5 * w, 0}, {0.6 * w, 0.35 * h}, {w, 0.35 * h}, {0.75 * w, 0.6 * h},
			{0.9 * w, h}, {0.5 * w, 0.75 * h}, {0.1 * w, h}, {0.25 * w, 0.6 * h},
			{0, 0.35 * h}, {0.4 * w, 0.35 * h},
		})
	case canvas.ShapePentagon:
		return poly([][2]float64{{w / 2, 0}, {w, 0.38 * h}, {0.82 * w, h}, {0.18 * w, h}, {0, 0.38 * h}})
	case canvas.ShapeHexagon:
		return poly([][2]float64{{0.25 * w, 0}, {0.75 * w, 0}, {w, 0.5 * h}, {0.75 * w, h}, {0.25 * w, h}, {0, 0.5 * h}})
	case canvas.ShapeHeart:
		return heartPath(w, h)
	case canvas.ShapeCross:
		return poly([][2]float64{
			{0.35 * w, 0}, {0.65 * w, 0}, {0.65 * w, 0.35 * h}, {w, 0.35 * h},
			{w, 0.65 * h}, {0.65 * w, 0.65 * h}, {0.65 * w, h}, {0.35 * w, h},
			{0.35 * w, 0.65 * h}, {0, 0.65 * h}, {0, 0.35 * h}, {0.35 * w, 0.35 * h},
		})
	case canvas.ShapeArrow:
		return poly([][2]float64{
			{0, 0.35 * h}, {0.6 * w, 0.35 * h}, {0.6 * w, 0.1 * h}, {w, 0.5 * h},
			{0.6 * w, 0.9 * h}, {0.6 * w, 0.65 * h}, {0, 0.65 * h},
		})
	case canvas.ShapeLine:
		// Open path, stroke only.
		return fmt.Sprintf("M0,%s L%s,%s", n(h/2), n(w), n(h/2))
	default:
		return poly([][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}})
	}
}

// RoundedRectPath is used instead of the plain rectangle path when a
// rectangle element carries a border radius. The radius is clamped to half
// the shorter side.
func RoundedRectPath(w, h, r float64) string {
	if r <= 0 {
		return PathFor(canvas.ShapeRectangle, w, h)
	}
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	return fmt.Sprintf("M%s,0 L%s,0 Q%s,0 %s,%s L%s,%s Q%s,%s %s,%s L%s,%s Q0,%s 0,%s L0,%s Q0,0 %s,0 Z",
		n(r), n(w-r), n(w), n(w), n(r), n(w), n(h-r), n(w), n(h), n(w-r), n(h), n(r), n(h), n(h), n(h-r), n(r), n(r))
}

func poly(pts [][2]float64) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(n(p[0]))
		b.WriteString(",")
		b.WriteString(n(p[1]))
	}
	b.WriteString(" Z")
	return b.String()
}

func heartPath(w, h float64) string {
	c := func(x1, y1, x2, y2, x, y float64) string {
		return fmt.Sprintf(" C%s,%s %s,%s %s,%s", n(x1), n(y1), n(x2), n(y2), n(x), n(y))
	}
	return "M" + n(0.5*w) + "," + n(0.25*h) +
		c(0.5*w, 0.1*h, 0.3*w, 0, 0.15*w, 0) +
		c(0.05*w, 0, 0, 0.1*h, 0, 0.25*h) +
		c(0, 0.45*h, 0.2*w, 0.6*h, 0.5*w, h) +
		c(0.8*w, 0.6*h, w, 0.45*h, w, 0.25*h) +
		c(w, 0.1*h, 0.95*w, 0, 0.85*w, 0) +
		c(0.7*w, 0, 0.5*w, 0.1*h, 0.5*w, 0.25*h) + " Z"
}

// n formats a coordinate with at most two decimals and no trailing zeros, so
// integer inputs produce integer coordinates byte for byte.
func n(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
