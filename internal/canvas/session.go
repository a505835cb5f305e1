package canvas

import (
	"sort"

	"github.com/google/uuid"
)

// Session owns the live element list for one open template editor. All edit
// operations go through the session so there is no ambient shared state and
// multiple editors can run side by side.
type Session struct {
	elements []Element
}

func NewSession(elements []Element) *Session {
	s := &Session{elements: make([]Element, len(elements))}
	copy(s.elements, elements)
	return s
}

// Elements returns a copy of the element list in insertion order. Callers
// (preview, export) must never be handed the live slice.
func (s *Session) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

func (s *Session) Len() int { return len(s.elements) }

// AddElement validates the kind-specific required fields, assigns a fresh id
// and the next z-index above everything currently on the canvas, and appends
// the element. New elements always paint on top.
func (s *Session) AddElement(kind ElementType, el Element) (Element, error) {
	if err := validateNew(kind, el); err != nil {
		return Element{}, err
	}

	el.Type = kind
	el.ID = uuid.New().String()
	el.ZIndex = s.maxZ() + 1
	if el.ScaleX == 0 {
		el.ScaleX = 1
	}
	if el.ScaleY == 0 {
		el.ScaleY = 1
	}
	el.IsVisible = true
	if kind == TypeQRCode && el.Data == "" {
		el.Data = DefaultQRPayload
	}
	if kind == TypeShape && el.Opacity == 0 {
		el.Opacity = 1
	}

	s.elements = append(s.elements, el)
	return el, nil
}

func validateNew(kind ElementType, el Element) error {
	switch kind {
	case TypeText:
		if el.PlaceholderType == "" || el.PlaceholderType == PlaceholderCustom {
			if el.Text == "" {
				return &ValidationError{Field: "text", Message: "custom text element requires non-empty text"}
			}
		}
	case TypeImage:
		if el.ImageURL == "" {
			return &ValidationError{Field: "imageUrl", Message: "image element requires an image"}
		}
		if el.Width < 1 || el.Height < 1 {
			return &ValidationError{Field: "width", Message: "image size must be at least 1px"}
		}
	case TypeQRCode:
		if el.Width < 1 || el.Height < 1 {
			return &ValidationError{Field: "width", Message: "qrcode size must be at least 1px"}
		}
	case TypeShape:
		if el.ShapeType == "" {
			return &ValidationError{Field: "shapeType", Message: "shape element requires a shape type"}
		}
	default:
		return &ValidationError{Field: "type", Message: "unknown element type"}
	}
	return nil
}

func (s *Session) maxZ() int {
	max := 0
	for _, el := range s.elements {
		if el.ZIndex > max {
			max = el.ZIndex
		}
	}
	return max
}

// UpdateElement merges the patch into the element with the given id. Only
// fields present in the patch change; everything else keeps its stored value.
// The element type is fixed at creation; a type change must go through delete
// and recreate because the kind-specific fields are not consistent across
// kinds.
func (s *Session) UpdateElement(id string, patch ElementPatch) (Element, error) {
	for i := range s.elements {
		if s.elements[i].ID != id {
			continue
		}
		if patch.Type != "" && patch.Type != s.elements[i].Type {
			return Element{}, &ValidationError{Field: "type", Message: "element type cannot change after creation"}
		}
		merged := mergePatch(s.elements[i], patch)
		if merged.Type == TypeText && (merged.PlaceholderType == "" || merged.PlaceholderType == PlaceholderCustom) && merged.Text == "" {
			return Element{}, &ValidationError{Field: "text", Message: "custom text element requires non-empty text"}
		}
		s.elements[i] = merged
		return merged, nil
	}
	return Element{}, &ValidationError{Field: "id", Message: "element not found"}
}

func mergePatch(base Element, patch ElementPatch) Element {
	out := base
	if patch.X != nil {
		out.X = *patch.X
	}
	if patch.Y != nil {
		out.Y = *patch.Y
	}
	if patch.ZIndex != nil {
		out.ZIndex = *patch.ZIndex
	}
	if patch.Rotation != nil {
		out.Rotation = *patch.Rotation
	}
	if patch.ScaleX != nil {
		out.ScaleX = *patch.ScaleX
	}
	if patch.ScaleY != nil {
		out.ScaleY = *patch.ScaleY
	}
	if patch.IsVisible != nil {
		out.IsVisible = *patch.IsVisible
	}
	if patch.Text != nil {
		out.Text = *patch.Text
	}
	if patch.PlaceholderType != nil {
		out.PlaceholderType = *patch.PlaceholderType
	}
	if patch.FontSize != nil {
		out.FontSize = *patch.FontSize
	}
	if patch.FontFamily != nil {
		out.FontFamily = *patch.FontFamily
	}
	if patch.FontWeight != nil {
		out.FontWeight = *patch.FontWeight
	}
	if patch.FontStyle != nil {
		out.FontStyle = *patch.FontStyle
	}
	if patch.TextAlign != nil {
		out.TextAlign = *patch.TextAlign
	}
	if patch.Color != nil {
		out.Color = *patch.Color
	}
	if patch.ImageURL != nil {
		out.ImageURL = *patch.ImageURL
	}
	if patch.Width != nil {
		out.Width = *patch.Width
	}
	if patch.Height != nil {
		out.Height = *patch.Height
	}
	if patch.Data != nil {
		out.Data = *patch.Data
	}
	if patch.ShapeType != nil {
		out.ShapeType = *patch.ShapeType
	}
	if patch.FillColor != nil {
		out.FillColor = *patch.FillColor
	}
	if patch.StrokeColor != nil {
		out.StrokeColor = *patch.StrokeColor
	}
	if patch.StrokeWidth != nil {
		out.StrokeWidth = *patch.StrokeWidth
	}
	if patch.Opacity != nil {
		out.Opacity = *patch.Opacity
	}
	if patch.BorderRadius != nil {
		out.BorderRadius = *patch.BorderRadius
	}
	return out
}

// RemoveElement deletes by id. Removing an unknown id is a no-op so a stale
// delete from the UI cannot fail the session.
func (s *Session) RemoveElement(id string) {
	for i := range s.elements {
		if s.elements[i].ID == id {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			return
		}
	}
}

// SetZIndex assigns an explicit paint order to one element. No automatic
// renumbering happens; duplicate z-indices are resolved by insertion order.
func (s *Session) SetZIndex(id string, z int) error {
	for i := range s.elements {
		if s.elements[i].ID == id {
			s.elements[i].ZIndex = z
			return nil
		}
	}
	return &ValidationError{Field: "id", Message: "element not found"}
}

// SortedByZ returns the elements in paint order: ascending z-index, ties
// broken by original insertion order. The sort must stay stable or layered
// templates flicker between loads.
func SortedByZ(elements []Element) []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}
