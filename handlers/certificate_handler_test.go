package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/davyaugustnurismail/ukk-sub001/internal/backendapi"
	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/internal/fonts"
	"github.com/davyaugustnurismail/ukk-sub001/internal/render"
	"github.com/davyaugustnurismail/ukk-sub001/middleware"
	"github.com/davyaugustnurismail/ukk-sub001/services"
)

// fakeStore keeps templates in memory so the handlers can be exercised
// without a database.
type fakeStore struct {
	templates map[string]*canvas.Template
}

func newFakeStore() *fakeStore {
	return &fakeStore{templates: make(map[string]*canvas.Template)}
}

func (f *fakeStore) ListTemplates(ctx context.Context, merchantID string) ([]*canvas.Template, error) {
	var out []*canvas.Template
	for _, t := range f.templates {
		if t.MerchantID == merchantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, id, merchantID string) (*canvas.Template, error) {
	t, ok := f.templates[id]
	if !ok || t.MerchantID != merchantID {
		return nil, services.ErrTemplateNotFound
	}
	cp := *t
	cp.Elements = append([]canvas.Element(nil), t.Elements...)
	return &cp, nil
}

func (f *fakeStore) CreateTemplate(ctx context.Context, merchantID, name, backgroundImage string) (*canvas.Template, error) {
	t := &canvas.Template{ID: "tpl-" + name, MerchantID: merchantID, Name: name, BackgroundImage: backgroundImage, IsActive: true}
	f.templates[t.ID] = t
	return t, nil
}

func (f *fakeStore) UpdateTemplate(ctx context.Context, t *canvas.Template) error {
	if _, ok := f.templates[t.ID]; !ok {
		return services.ErrTemplateNotFound
	}
	f.templates[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTemplate(ctx context.Context, id, merchantID string) error {
	if _, ok := f.templates[id]; !ok {
		return services.ErrTemplateNotFound
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeStore) AddElement(ctx context.Context, id, merchantID string, kind canvas.ElementType, el canvas.Element) (canvas.Element, error) {
	t, err := f.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return canvas.Element{}, err
	}
	session := canvas.NewSession(t.Elements)
	added, err := session.AddElement(kind, el)
	if err != nil {
		return canvas.Element{}, err
	}
	t.Elements = session.Elements()
	f.templates[id] = t
	return added, nil
}

func (f *fakeStore) UpdateElement(ctx context.Context, id, merchantID, elementID string, patch canvas.ElementPatch) (canvas.Element, error) {
	t, err := f.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return canvas.Element{}, err
	}
	session := canvas.NewSession(t.Elements)
	updated, err := session.UpdateElement(elementID, patch)
	if err != nil {
		return canvas.Element{}, err
	}
	t.Elements = session.Elements()
	f.templates[id] = t
	return updated, nil
}

func (f *fakeStore) RemoveElement(ctx context.Context, id, merchantID, elementID string) error {
	t, err := f.GetTemplate(ctx, id, merchantID)
	if err != nil {
		return err
	}
	session := canvas.NewSession(t.Elements)
	session.RemoveElement(elementID)
	t.Elements = session.Elements()
	f.templates[id] = t
	return nil
}

type fakeRenderer struct {
	payload backendapi.PDFPayload
}

func (f *fakeRenderer) GeneratePDF(ctx context.Context, templateID string, payload backendapi.PDFPayload) ([]byte, error) {
	f.payload = payload
	return []byte("%PDF-1.4"), nil
}

func withMerchant(r *http.Request, merchantID string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.MerchantIDKey, merchantID)
	return r.WithContext(ctx)
}

func testRouter(t *testing.T, store *fakeStore, renderer *fakeRenderer) *mux.Router {
	t.Helper()
	previewer := render.NewPreviewer(t.TempDir())
	registry := fonts.NewRegistry("http://localhost:3333")
	registry.Register("poppins", "Poppins-Regular.ttf", "400", "normal")

	templateHandler := NewTemplateHandler(store, services.NewUploadService(t.TempDir(), "http://localhost:3333"))
	certificateHandler := NewCertificateHandler(store, previewer, renderer, registry, "http://localhost:3333")

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/templates/{id}", templateHandler.GetTemplate).Methods("GET")
	r.HandleFunc("/api/v1/templates/{id}/elements", templateHandler.AddElement).Methods("POST")
	r.HandleFunc("/api/v1/templates/{id}/preview.png", certificateHandler.Preview).Methods("GET")
	r.HandleFunc("/api/v1/templates/{id}/generate-pdf", certificateHandler.GeneratePDF).Methods("POST")
	r.HandleFunc("/api/v1/fonts.css", certificateHandler.FontsCSS).Methods("GET")
	return r
}

func seedTemplate(store *fakeStore) *canvas.Template {
	tpl := &canvas.Template{
		ID:         "tpl-1",
		MerchantID: "m-1",
		Name:       "Sertifikat Pelatihan",
		IsActive:   true,
		Elements: []canvas.Element{
			{ID: "t1", Type: canvas.TypeText, Text: "Diberikan kepada {NAMA}", ZIndex: 1,
				PlaceholderType: canvas.PlaceholderCustom, FontSize: 20, ScaleX: 1, ScaleY: 1, IsVisible: true},
			{ID: "s1", Type: canvas.TypeShape, ShapeType: canvas.ShapeCircle, ZIndex: 2,
				Width: 40, Height: 40, FillColor: "#123456", Opacity: 1, ScaleX: 1, ScaleY: 1, IsVisible: true},
		},
	}
	store.templates[tpl.ID] = tpl
	return tpl
}

func TestGeneratePDFExcludesShapes(t *testing.T) {
	store := newFakeStore()
	seedTemplate(store)
	renderer := &fakeRenderer{}
	router := testRouter(t, store, renderer)

	body := bytes.NewBufferString(`{"recipient_name": "Budi", "certificate_number": "CERT/0001/VIII/2025", "date": "2025-08-19", "instruktur": "Siti"}`)
	req := withMerchant(httptest.NewRequest("POST", "/api/v1/templates/tpl-1/generate-pdf", body), "m-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content-type = %q", ct)
	}

	for _, el := range renderer.payload.Elements {
		if el.Type == canvas.TypeShape {
			t.Error("shape element reached the PDF renderer")
		}
	}
	if len(renderer.payload.Elements) != 2 {
		t.Errorf("payload element count = %d, want 2", len(renderer.payload.Elements))
	}
	if renderer.payload.RecipientName != "Budi" {
		t.Errorf("recipient lost: %+v", renderer.payload)
	}

	// The stored template keeps its shape element.
	if store.templates["tpl-1"].Elements[1].Type != canvas.TypeShape {
		t.Error("export mutated the stored template")
	}
}

func TestAddElementValidationSurfaced(t *testing.T) {
	store := newFakeStore()
	seedTemplate(store)
	router := testRouter(t, store, &fakeRenderer{})

	body := bytes.NewBufferString(`{"type": "text", "placeholderType": "custom", "text": ""}`)
	req := withMerchant(httptest.NewRequest("POST", "/api/v1/templates/tpl-1/elements", body), "m-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["field"] != "text" {
		t.Errorf("validation field not surfaced: %v", resp)
	}
}

func TestAddElementAssignsTopZIndex(t *testing.T) {
	store := newFakeStore()
	seedTemplate(store)
	router := testRouter(t, store, &fakeRenderer{})

	body := bytes.NewBufferString(`{"type": "qrcode", "width": 80, "height": 80}`)
	req := withMerchant(httptest.NewRequest("POST", "/api/v1/templates/tpl-1/elements", body), "m-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data canvas.Element `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.ZIndex != 3 {
		t.Errorf("zIndex = %d, want 3", resp.Data.ZIndex)
	}
}

func TestPreviewPNG(t *testing.T) {
	store := newFakeStore()
	seedTemplate(store)
	router := testRouter(t, store, &fakeRenderer{})

	req := withMerchant(httptest.NewRequest("GET", "/api/v1/templates/tpl-1/preview.png?width=421&name=Budi", nil), "m-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}
}

func TestTemplateScopedByMerchant(t *testing.T) {
	store := newFakeStore()
	seedTemplate(store)
	router := testRouter(t, store, &fakeRenderer{})

	req := withMerchant(httptest.NewRequest("GET", "/api/v1/templates/tpl-1", nil), "other-merchant")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant read returned %d, want 404", rec.Code)
	}
}

func TestFontsCSS(t *testing.T) {
	store := newFakeStore()
	router := testRouter(t, store, &fakeRenderer{})

	req := httptest.NewRequest("GET", "/api/v1/fonts.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("@font-face")) {
		t.Errorf("no @font-face rules in output")
	}
}
