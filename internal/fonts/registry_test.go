package fonts

import (
	"strings"
	"testing"
)

func TestRegisterAndMemoize(t *testing.T) {
	reg := NewRegistry("http://localhost:3333")

	family, ok := reg.Register("Poppins", "Poppins-Bold.ttf", "700", "normal")
	if !ok {
		t.Fatal("ttf registration failed")
	}
	if family != "poppins-poppins-bold" {
		t.Errorf("family = %q", family)
	}

	again, ok := reg.Register("Poppins", "Poppins-Bold.ttf", "700", "normal")
	if !ok || again != family {
		t.Errorf("re-registration changed the family: %q vs %q", again, family)
	}
	if len(reg.Families()) != 1 {
		t.Errorf("duplicate registration injected a second face")
	}
}

func TestRegisterRejectsUnknownExtensions(t *testing.T) {
	reg := NewRegistry("http://localhost:3333")
	if _, ok := reg.Register("poppins", "readme.txt", "400", "normal"); ok {
		t.Error("non-font extension accepted")
	}
	if len(reg.Families()) != 0 {
		t.Error("rejected file still registered")
	}
}

func TestFamilyNameWeightFallback(t *testing.T) {
	// When the file stem adds nothing over the folder, the weight/style
	// combination names the face.
	got := FamilyName("Poppins", "poppins.ttf", "700", "italic")
	if got != "poppins-w700italic" {
		t.Errorf("fallback family = %q", got)
	}
}

func TestCSSOutput(t *testing.T) {
	reg := NewRegistry("http://localhost:3333")
	reg.Register("playfair", "PlayfairDisplay-Regular.ttf", "400", "normal")
	reg.Register("playfair", "PlayfairDisplay-Bold.woff2", "700", "normal")

	css := reg.CSS()
	if strings.Count(css, "@font-face") != 2 {
		t.Errorf("expected two rules:\n%s", css)
	}
	if !strings.Contains(css, `format("truetype")`) || !strings.Contains(css, `format("woff2")`) {
		t.Errorf("formats not derived from extensions:\n%s", css)
	}
	if css != reg.CSS() {
		t.Error("CSS output not stable")
	}
}
