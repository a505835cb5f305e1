package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager hands out font faces for the preview painter. The embedded Go
// fonts cover the regular/bold/italic variants; faces are cached per
// weight/style/size because opentype face creation is not cheap.
type FontManager struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	variant string
	size    float64
}

func NewFontManager() *FontManager {
	return &FontManager{
		parsed: make(map[string]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
	}
}

// Face returns a cached face for the weight/style pair at the given size.
func (fm *FontManager) Face(weight, style string, size float64) (font.Face, error) {
	if size <= 0 {
		size = 16
	}
	variant := variantFor(weight, style)

	fm.mu.Lock()
	defer fm.mu.Unlock()

	key := faceKey{variant: variant, size: size}
	if face, ok := fm.faces[key]; ok {
		return face, nil
	}

	parsed, err := fm.parsedFont(variant)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %s@%g: %w", variant, size, err)
	}
	fm.faces[key] = face
	return face, nil
}

func (fm *FontManager) parsedFont(variant string) (*opentype.Font, error) {
	if f, ok := fm.parsed[variant]; ok {
		return f, nil
	}
	var data []byte
	switch variant {
	case "bolditalic":
		data = gobolditalic.TTF
	case "bold":
		data = gobold.TTF
	case "italic":
		data = goitalic.TTF
	default:
		data = goregular.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font %s: %w", variant, err)
	}
	fm.parsed[variant] = f
	return f, nil
}

func variantFor(weight, style string) string {
	bold := weight == "bold" || weight == "600" || weight == "700" || weight == "800" || weight == "900"
	italic := style == "italic" || style == "oblique"
	switch {
	case bold && italic:
		return "bolditalic"
	case bold:
		return "bold"
	case italic:
		return "italic"
	default:
		return "regular"
	}
}
