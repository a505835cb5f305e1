package utils

import (
	"fmt"
	"time"
)

var romanMonths = [...]string{
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII",
}

// FormatCertificateNumber builds the issued certificate number in the
// standard Indonesian layout: CERT/<sequence>/<roman month>/<year>,
// e.g. CERT/0042/VIII/2025.
func FormatCertificateNumber(sequence int, issued time.Time) string {
	if sequence < 1 {
		sequence = 1
	}
	return fmt.Sprintf("CERT/%04d/%s/%d", sequence, romanMonths[issued.Month()-1], issued.Year())
}
