// Package fonts manages the generated font families available to templates.
//
// The catalog lives on the backend as folders of font files plus a
// {weight, style} -> file table. Each registered entry becomes one
// @font-face rule keyed by a deterministic generated family name, memoized
// so repeated template loads never inject duplicate rules.
package fonts

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var formats = map[string]string{
	".ttf":   "truetype",
	".otf":   "opentype",
	".woff":  "woff",
	".woff2": "woff2",
}

var sanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Registry holds the registered font faces for one service instance.
type Registry struct {
	mu      sync.Mutex
	baseURL string
	faces   map[string]face
}

type face struct {
	family string
	src    string
	format string
	weight string
	style  string
}

func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		faces:   make(map[string]face),
	}
}

// Register computes the generated family name for a font file and records
// its @font-face entry. It returns the family name and true on success, or
// "" and false when the file extension is not a recognized font format.
// Registering an already-known family is a no-op that still returns the name.
func (r *Registry) Register(folderName, fileName, weight, style string) (string, bool) {
	ext := strings.ToLower(path.Ext(fileName))
	format, ok := formats[ext]
	if !ok {
		return "", false
	}

	family := FamilyName(folderName, fileName, weight, style)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.faces[family]; exists {
		return family, true
	}

	if weight == "" {
		weight = "400"
	}
	if style == "" {
		style = "normal"
	}
	r.faces[family] = face{
		family: family,
		src:    fmt.Sprintf("%s/fonts/%s/%s", r.baseURL, folderName, fileName),
		format: format,
		weight: weight,
		style:  style,
	}
	return family, true
}

// FamilyName derives the deterministic generated family name: the sanitized
// folder key joined with the sanitized file stem, or with a weight/style
// suffix when only metadata distinguishes the face.
func FamilyName(folderName, fileName, weight, style string) string {
	folder := sanitize(folderName)
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	if s := sanitize(stem); s != "" && s != folder {
		return folder + "-" + s
	}
	suffix := "w" + orDefault(weight, "400")
	if style != "" && style != "normal" {
		suffix += style
	}
	return folder + "-" + suffix
}

// CSS renders every registered face as an @font-face rule, sorted by family
// name so the output is stable across restarts.
func (r *Registry) CSS() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.faces))
	for name := range r.faces {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		f := r.faces[name]
		fmt.Fprintf(&b, "@font-face{font-family:%q;src:url(%q) format(%q);font-weight:%s;font-style:%s}\n",
			f.family, f.src, f.format, f.weight, f.style)
	}
	return b.String()
}

// Families returns the registered family names in sorted order.
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.faces))
	for name := range r.faces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sanitize(s string) string {
	return strings.Trim(sanitizeRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
