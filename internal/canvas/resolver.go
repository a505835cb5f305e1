package canvas

import (
	"fmt"
	"strings"
	"time"
)

// Preview fallbacks shown when the recipient context has no value yet.
const (
	fallbackName       = "Nama Peserta"
	fallbackNumber     = "CERT-001"
	fallbackInstructor = "Instruktur Contoh"
	fallbackDate       = "19 Agustus 2025"
)

var bulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate renders a date value as a long Indonesian date, e.g.
// "19 Agustus 2025". Empty input returns the fixed preview fallback so
// template previews are stable across days. Accepted inputs are RFC 3339
// timestamps, "2006-01-02" and "02/01/2006"; anything unparseable passes
// through unchanged so a date typed free-form by an admin is never destroyed.
func FormatDate(raw string) string {
	if raw == "" {
		return fallbackDate
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return fmt.Sprintf("%d %s %d", t.Day(), bulan[t.Month()-1], t.Year())
		}
	}
	return raw
}

// Resolve maps a text element to its recipient-specific display string.
//
// Two mechanisms compose. The element's placeholder type replaces the whole
// string when it is not custom; independently, the four inline tokens
// {NAMA} {NOMOR} {TANGGAL} {INSTRUKTUR} are always substituted inside the
// literal text, so authors can mix prose with tokens
// ("Diberikan kepada {NAMA} pada {TANGGAL}").
//
// Resolve is pure and idempotent: once no tokens or placeholder markers
// remain, resolving again returns the same string.
func Resolve(el Element, rc RecipientContext) string {
	switch el.PlaceholderType {
	case PlaceholderName:
		return orFallback(rc.RecipientName, fallbackName)
	case PlaceholderNumber:
		return orFallback(rc.CertificateNumber, fallbackNumber)
	case PlaceholderDate:
		return FormatDate(rc.CertificateDate)
	case PlaceholderInstructor:
		return orFallback(rc.Instruktur, fallbackInstructor)
	}
	return SubstituteTokens(el.Text, rc)
}

// SubstituteTokens replaces every inline token occurrence in s with the
// matching recipient field, falling back to the preview strings when the
// context is empty.
func SubstituteTokens(s string, rc RecipientContext) string {
	if !strings.Contains(s, "{") {
		return s
	}
	r := strings.NewReplacer(
		"{NAMA}", orFallback(rc.RecipientName, fallbackName),
		"{NOMOR}", orFallback(rc.CertificateNumber, fallbackNumber),
		"{TANGGAL}", FormatDate(rc.CertificateDate),
		"{INSTRUKTUR}", orFallback(rc.Instruktur, fallbackInstructor),
	)
	return r.Replace(s)
}

func orFallback(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
