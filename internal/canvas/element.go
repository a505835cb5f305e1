package canvas

import (
	"encoding/json"
	"fmt"
	"time"
)

// Logical canvas size in authoring units. Every element coordinate is
// expressed against this space regardless of on-screen pixel size.
const (
	Width  = 842.0
	Height = 595.0
)

type ElementType string

const (
	TypeText   ElementType = "text"
	TypeImage  ElementType = "image"
	TypeQRCode ElementType = "qrcode"
	TypeShape  ElementType = "shape"
)

type PlaceholderType string

const (
	PlaceholderCustom     PlaceholderType = "custom"
	PlaceholderName       PlaceholderType = "name"
	PlaceholderNumber     PlaceholderType = "number"
	PlaceholderDate       PlaceholderType = "date"
	PlaceholderInstructor PlaceholderType = "instructor"
)

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeDiamond   ShapeType = "diamond"
	ShapeStar      ShapeType = "star"
	ShapePentagon  ShapeType = "pentagon"
	ShapeHexagon   ShapeType = "hexagon"
	ShapeHeart     ShapeType = "heart"
	ShapeCross     ShapeType = "cross"
	ShapeArrow     ShapeType = "arrow"
	ShapeLine      ShapeType = "line"
)

// DefaultQRPayload is embedded in qrcode elements that carry no payload.
const DefaultQRPayload = "https://sertifikat.lembagapelatihan.id"

// Element is one positioned object on the canvas. It is a tagged union over
// Type; only the fields matching the element's kind are meaningful.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	ZIndex   int         `json:"zIndex"`
	Rotation float64     `json:"rotation"`
	ScaleX   float64     `json:"scaleX"`
	ScaleY   float64     `json:"scaleY"`
	IsVisible bool       `json:"isVisible"`

	// Text fields.
	Text            string          `json:"text,omitempty"`
	PlaceholderType PlaceholderType `json:"placeholderType,omitempty"`
	FontSize        float64         `json:"fontSize,omitempty"`
	FontFamily      string          `json:"fontFamily,omitempty"`
	FontWeight      string          `json:"fontWeight,omitempty"`
	FontStyle       string          `json:"fontStyle,omitempty"`
	TextAlign       string          `json:"textAlign,omitempty"`
	Color           string          `json:"color,omitempty"`

	// Image and qrcode fields.
	ImageURL string  `json:"imageUrl,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Data     string  `json:"data,omitempty"`

	// Shape fields.
	ShapeType    ShapeType `json:"shapeType,omitempty"`
	FillColor    string    `json:"fillColor,omitempty"`
	StrokeColor  string    `json:"strokeColor,omitempty"`
	StrokeWidth  float64   `json:"strokeWidth,omitempty"`
	Opacity      float64   `json:"opacity,omitempty"`
	BorderRadius float64   `json:"borderRadius,omitempty"`
}

// UnmarshalJSON applies the element defaults (visible, unit scale, full
// opacity) before decoding, so templates authored without those keys behave
// the same as freshly created elements.
func (e *Element) UnmarshalJSON(b []byte) error {
	type alias Element
	a := alias{ScaleX: 1, ScaleY: 1, IsVisible: true, Opacity: 1}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*e = Element(a)
	return nil
}

// ElementPatch is a partial element update. Pointer fields distinguish "set
// to the zero value" from "not in the patch": only present fields are merged,
// so {"x": 650} moves an element without touching its visibility, and
// {"x": 0} is a real move to the canvas edge.
type ElementPatch struct {
	Type ElementType `json:"type,omitempty"`

	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	ZIndex    *int     `json:"zIndex,omitempty"`
	Rotation  *float64 `json:"rotation,omitempty"`
	ScaleX    *float64 `json:"scaleX,omitempty"`
	ScaleY    *float64 `json:"scaleY,omitempty"`
	IsVisible *bool    `json:"isVisible,omitempty"`

	Text            *string          `json:"text,omitempty"`
	PlaceholderType *PlaceholderType `json:"placeholderType,omitempty"`
	FontSize        *float64         `json:"fontSize,omitempty"`
	FontFamily      *string          `json:"fontFamily,omitempty"`
	FontWeight      *string          `json:"fontWeight,omitempty"`
	FontStyle       *string          `json:"fontStyle,omitempty"`
	TextAlign       *string          `json:"textAlign,omitempty"`
	Color           *string          `json:"color,omitempty"`

	ImageURL *string  `json:"imageUrl,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Data     *string  `json:"data,omitempty"`

	ShapeType    *ShapeType `json:"shapeType,omitempty"`
	FillColor    *string    `json:"fillColor,omitempty"`
	StrokeColor  *string    `json:"strokeColor,omitempty"`
	StrokeWidth  *float64   `json:"strokeWidth,omitempty"`
	Opacity      *float64   `json:"opacity,omitempty"`
	BorderRadius *float64   `json:"borderRadius,omitempty"`
}

// Template is the unit of persistence: a named layout owned by a tenant,
// holding an ordered element list plus a background image.
type Template struct {
	ID              string    `json:"id"`
	MerchantID      string    `json:"merchant_id"`
	Name            string    `json:"name"`
	BackgroundImage string    `json:"backgroundImage"`
	Elements        []Element `json:"elements"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecipientContext is the per-issuance data substituted into placeholder
// text at render and export time. It is never stored on an element.
type RecipientContext struct {
	RecipientName     string `json:"recipient_name"`
	CertificateNumber string `json:"certificate_number"`
	CertificateDate   string `json:"date"`
	Instruktur        string `json:"instruktur"`
}

// RecipientFromMap builds a context from a loosely keyed payload. The backend
// has shipped several key spellings over time, so each field checks every
// variant that has been observed in stored templates.
func RecipientFromMap(m map[string]any) RecipientContext {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k]; ok {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
		return ""
	}
	return RecipientContext{
		RecipientName:     pick("recipient_name", "recipientName", "nama", "name"),
		CertificateNumber: pick("certificate_number", "certificateNumber", "nomor", "number"),
		CertificateDate:   pick("date", "certificate_date", "certificateDate", "tanggal"),
		Instruktur:        pick("instruktur", "instructor"),
	}
}

// ValidationError reports a missing or invalid element field. It is returned
// to the caller and rendered next to the offending form control; it never
// aborts the editing session.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
