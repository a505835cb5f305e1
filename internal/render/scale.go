package render

import "github.com/davyaugustnurismail/ukk-sub001/internal/canvas"

// Factor computes the uniform scale from a rendering container's pixel width
// to the fixed canvas width. It applies equally to x, y, width, height and
// font size; rotation degrees and colors are never scaled.
func Factor(containerWidthPx float64) float64 {
	if containerWidthPx <= 0 {
		return 1
	}
	return containerWidthPx / canvas.Width
}

// AlignShift returns the anchor shift for a text alignment as a fraction of
// the rendered text width: left anchors at x, center shifts back by half,
// right by the full width. Positions stay anchor-relative, matching how the
// element's x was authored.
func AlignShift(textAlign string) float64 {
	switch textAlign {
	case "center":
		return -0.5
	case "right":
		return -1
	default:
		return 0
	}
}
