package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
)

func TestPreviewRenderDimensions(t *testing.T) {
	p := NewPreviewer(t.TempDir())
	tpl := &canvas.Template{
		ID:   "t1",
		Name: "Sertifikat Pelatihan",
		Elements: []canvas.Element{
			{ID: "a", Type: canvas.TypeText, Text: "Sertifikat", X: 300, Y: 80,
				FontSize: 32, TextAlign: "center", Color: "#1a1a2e",
				PlaceholderType: canvas.PlaceholderCustom, ScaleX: 1, ScaleY: 1, IsVisible: true},
			{ID: "b", Type: canvas.TypeShape, ShapeType: canvas.ShapeStar, X: 40, Y: 40,
				Width: 60, Height: 60, FillColor: "#ffd700", Opacity: 1,
				ScaleX: 1, ScaleY: 1, IsVisible: true},
			{ID: "c", Type: canvas.TypeQRCode, Data: "https://example.com", X: 700, Y: 480,
				Width: 90, Height: 90, ScaleX: 1, ScaleY: 1, IsVisible: true},
		},
	}

	out, err := p.Render(tpl, canvas.RecipientContext{RecipientName: "Budi"}, 421, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 421 {
		t.Errorf("width = %d, want 421", img.Bounds().Dx())
	}
	// 595 * (421/842) rounded.
	if h := img.Bounds().Dy(); h != 298 {
		t.Errorf("height = %d, want 298", h)
	}
}

func TestPreviewRenderEmptyTemplate(t *testing.T) {
	p := NewPreviewer(t.TempDir())
	tpl := &canvas.Template{ID: "t2", Name: "Kosong"}

	out, err := p.Render(tpl, canvas.RecipientContext{}, 842, nil)
	if err != nil {
		t.Fatalf("empty template must still render: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
}

func TestPreviewToleratesBrokenImageSource(t *testing.T) {
	p := NewPreviewer(t.TempDir())
	tpl := &canvas.Template{
		ID: "t3",
		Elements: []canvas.Element{
			{ID: "x", Type: canvas.TypeImage, ImageURL: "storage/missing.png",
				X: 10, Y: 10, Width: 50, Height: 50, ScaleX: 1, ScaleY: 1, IsVisible: true},
		},
	}
	if _, err := p.Render(tpl, canvas.RecipientContext{}, 400, nil); err != nil {
		t.Fatalf("a broken image source must degrade to a placeholder, got %v", err)
	}
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func renderOneShape(t *testing.T, rotation float64) image.Image {
	t.Helper()
	p := NewPreviewer(t.TempDir())
	tpl := &canvas.Template{
		ID: "t-rot",
		Elements: []canvas.Element{
			{ID: "r", Type: canvas.TypeShape, ShapeType: canvas.ShapeRectangle,
				X: 100, Y: 100, Width: 100, Height: 20, Rotation: rotation,
				FillColor: "#ff0000", Opacity: 1, ScaleX: 1, ScaleY: 1, IsVisible: true},
		},
	}
	out, err := p.Render(tpl, canvas.RecipientContext{}, 842, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func TestPreviewAppliesRotation(t *testing.T) {
	// A 100×20 bar at (100,100). Rotated 90° about its center (150,110) it
	// occupies x∈[140,160], y∈[60,160]; unrotated it occupies x∈[100,200],
	// y∈[100,120]. Two probes distinguish the orientations.
	rotated := renderOneShape(t, 90)
	straight := renderOneShape(t, 0)

	// (150,80): inside only when rotated.
	if c := rgbaAt(rotated, 150, 80); c.R < 200 || c.G > 80 {
		t.Errorf("rotated bar missing at (150,80): %+v", c)
	}
	if c := rgbaAt(straight, 150, 80); c.R < 200 || c.G < 200 || c.B < 200 {
		t.Errorf("unrotated render painted outside the bar at (150,80): %+v", c)
	}

	// (115,110): inside only when unrotated.
	if c := rgbaAt(straight, 115, 110); c.R < 200 || c.G > 80 {
		t.Errorf("unrotated bar missing at (115,110): %+v", c)
	}
	if c := rgbaAt(rotated, 115, 110); c.R < 200 || c.G < 200 || c.B < 200 {
		t.Errorf("rotation not applied: bar still covers (115,110): %+v", c)
	}
}

func TestPreviewAppliesElementScale(t *testing.T) {
	p := NewPreviewer(t.TempDir())
	tpl := &canvas.Template{
		ID: "t-scale",
		Elements: []canvas.Element{
			{ID: "s", Type: canvas.TypeShape, ShapeType: canvas.ShapeRectangle,
				X: 100, Y: 100, Width: 40, Height: 40, ScaleX: 3, ScaleY: 3,
				FillColor: "#ff0000", Opacity: 1, IsVisible: true},
		},
	}
	out, err := p.Render(tpl, canvas.RecipientContext{}, 842, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Scaled 3× about the center (120,120) the square spans x,y∈[60,180];
	// at the authored size it would end at 140.
	if c := rgbaAt(img, 165, 120); c.R < 200 || c.G > 80 {
		t.Errorf("element scale not applied at (165,120): %+v", c)
	}
	if c := rgbaAt(img, 70, 120); c.R < 200 || c.G > 80 {
		t.Errorf("scale must grow about the center, missing at (70,120): %+v", c)
	}
}

func TestFontManagerVariants(t *testing.T) {
	fm := NewFontManager()
	for _, c := range []struct{ weight, style string }{
		{"", ""}, {"bold", ""}, {"700", "italic"}, {"400", "oblique"},
	} {
		if _, err := fm.Face(c.weight, c.style, 16); err != nil {
			t.Errorf("Face(%q, %q): %v", c.weight, c.style, err)
		}
	}

	a, _ := fm.Face("bold", "", 20)
	b, _ := fm.Face("bold", "", 20)
	if a != b {
		t.Error("face cache miss for identical parameters")
	}
}
