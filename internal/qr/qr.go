// Package qr wraps QR encoding for qrcode elements.
package qr

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"

	"github.com/skip2/go-qrcode"
)

// Generate encodes data as a level-M QR code and returns the PNG bytes at
// pixelSize×pixelSize. The encoder is deterministic: the same payload always
// produces byte-identical output, so repeated exports of one certificate
// embed identical QR bitmaps.
//
// When the payload cannot be encoded (too long for the matrix) a flat gray
// placeholder of the requested size is returned instead of an error; a bad
// QR must never take down the whole render.
func Generate(data string, pixelSize int) []byte {
	if pixelSize < 1 {
		pixelSize = 1
	}
	pngBytes, err := qrcode.Encode(data, qrcode.Medium, pixelSize)
	if err != nil {
		log.Printf("qr: encode failed (%d bytes payload): %v", len(data), err)
		return placeholder(pixelSize)
	}
	return pngBytes
}

// GenerateDataURL is Generate with the data-URL wrapping the element model
// stores in imageUrl.
func GenerateDataURL(data string, pixelSize int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(Generate(data, pixelSize))
}

func placeholder(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{200, 200, 200, 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
