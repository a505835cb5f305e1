package canvas

import "testing"

func TestResolvePlaceholderTypes(t *testing.T) {
	rc := RecipientContext{
		RecipientName:     "Budi",
		CertificateNumber: "CERT/0007/VIII/2025",
		CertificateDate:   "2025-08-19",
		Instruktur:        "Siti Rahma",
	}

	cases := []struct {
		name string
		el   Element
		want string
	}{
		{"name", Element{PlaceholderType: PlaceholderName, Text: ""}, "Budi"},
		{"number", Element{PlaceholderType: PlaceholderNumber}, "CERT/0007/VIII/2025"},
		{"date", Element{PlaceholderType: PlaceholderDate}, "19 Agustus 2025"},
		{"instructor", Element{PlaceholderType: PlaceholderInstructor}, "Siti Rahma"},
		{"custom literal", Element{PlaceholderType: PlaceholderCustom, Text: "Sertifikat Kelulusan"}, "Sertifikat Kelulusan"},
		{"custom with token", Element{PlaceholderType: PlaceholderCustom, Text: "Kepada {NAMA}"}, "Kepada Budi"},
		{"mixed tokens", Element{PlaceholderType: PlaceholderCustom, Text: "Diberikan kepada {NAMA} pada {TANGGAL}"}, "Diberikan kepada Budi pada 19 Agustus 2025"},
	}

	for _, tc := range cases {
		if got := Resolve(tc.el, rc); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveFallbacks(t *testing.T) {
	empty := RecipientContext{}

	if got := Resolve(Element{PlaceholderType: PlaceholderName}, empty); got != "Nama Peserta" {
		t.Errorf("name fallback: got %q", got)
	}
	if got := Resolve(Element{PlaceholderType: PlaceholderNumber}, empty); got != "CERT-001" {
		t.Errorf("number fallback: got %q", got)
	}
	if got := Resolve(Element{PlaceholderType: PlaceholderInstructor}, empty); got != "Instruktur Contoh" {
		t.Errorf("instructor fallback: got %q", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	rc := RecipientContext{RecipientName: "Budi", CertificateDate: "2025-08-19"}
	el := Element{PlaceholderType: PlaceholderCustom, Text: "Kepada {NAMA}, {TANGGAL}"}

	once := Resolve(el, rc)
	el.Text = once
	twice := Resolve(el, rc)
	if once != twice {
		t.Errorf("resolve is not idempotent: %q then %q", once, twice)
	}
}

func TestFormatDate(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2025-08-19", "19 Agustus 2025"},
		{"2025-08-19T10:30:00Z", "19 Agustus 2025"},
		{"19/01/2024", "19 Januari 2024"},
		{"besok sore", "besok sore"}, // unparseable passes through
		{"", "19 Agustus 2025"},      // empty falls back to the fixed preview date
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRecipientFromMapVariants(t *testing.T) {
	rc := RecipientFromMap(map[string]any{
		"nama":              "Budi",
		"certificateNumber": "CERT-042",
		"tanggal":           "2025-08-19",
		"instructor":        "Siti",
	})
	if rc.RecipientName != "Budi" || rc.CertificateNumber != "CERT-042" ||
		rc.CertificateDate != "2025-08-19" || rc.Instruktur != "Siti" {
		t.Errorf("variant keys not picked up: %+v", rc)
	}
}
