package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/davyaugustnurismail/ukk-sub001/internal/backendapi"
	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/internal/export"
	"github.com/davyaugustnurismail/ukk-sub001/internal/fonts"
	"github.com/davyaugustnurismail/ukk-sub001/internal/render"
	"github.com/davyaugustnurismail/ukk-sub001/middleware"
	"github.com/davyaugustnurismail/ukk-sub001/services"
)

// CertificateHandler serves the rendering surface of the editor: PNG
// previews, the PDF export pipeline and the generated font stylesheet.
type CertificateHandler struct {
	store     TemplateStore
	previewer *render.Previewer
	renderer  export.PDFRenderer
	registry  *fonts.Registry
	baseURL   string
}

func NewCertificateHandler(store TemplateStore, previewer *render.Previewer, renderer export.PDFRenderer, registry *fonts.Registry, baseURL string) *CertificateHandler {
	return &CertificateHandler{
		store:     store,
		previewer: previewer,
		renderer:  renderer,
		registry:  registry,
		baseURL:   baseURL,
	}
}

// Preview renders the template as a PNG at the requested container width.
// The recipient context comes from query parameters so the editor can page
// through participants without persisting anything.
func (h *CertificateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	t, err := h.store.GetTemplate(ctx, mux.Vars(r)["id"], merchantID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "unable to fetch template")
		return
	}

	q := r.URL.Query()
	width, _ := strconv.Atoi(q.Get("width"))
	rc := canvas.RecipientContext{
		RecipientName:     q.Get("name"),
		CertificateNumber: q.Get("number"),
		CertificateDate:   q.Get("date"),
		Instruktur:        q.Get("instruktur"),
	}

	resolve := func(raw string) string {
		return backendapi.NormalizeImageURL(h.baseURL, raw)
	}
	pngBytes, err := h.previewer.Render(t, rc, width, resolve)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "unable to render preview")
		return
	}
	middleware.CountPreviewRender()

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(pngBytes)
}

// GeneratePDF runs the export pipeline for one recipient: shape elements are
// rasterized concurrently into image elements, then the payload is handed to
// the external PDF renderer and the binary streamed back.
func (h *CertificateHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	t, err := h.store.GetTemplate(ctx, mux.Vars(r)["id"], merchantID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "unable to fetch template")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid recipient payload")
		return
	}
	rc := canvas.RecipientFromMap(body)

	pdfBytes, err := export.Export(ctx, h.renderer, t, rc)
	if err != nil {
		middleware.CountPDFExport("error")
		var ee *backendapi.ExportError
		if errors.As(err, &ee) {
			respondWithError(w, http.StatusBadGateway, ee.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "gagal membuat PDF sertifikat")
		return
	}
	middleware.CountPDFExport("success")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sertifikat.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// FontsCSS serves the @font-face rules for every registered template font.
func (h *CertificateHandler) FontsCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.registry.CSS()))
}
