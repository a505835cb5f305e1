package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
	"github.com/davyaugustnurismail/ukk-sub001/middleware"
	"github.com/davyaugustnurismail/ukk-sub001/services"
)

// TemplateStore is the persistence surface the handlers need. Implemented by
// *services.TemplateService.
type TemplateStore interface {
	ListTemplates(ctx context.Context, merchantID string) ([]*canvas.Template, error)
	GetTemplate(ctx context.Context, id, merchantID string) (*canvas.Template, error)
	CreateTemplate(ctx context.Context, merchantID, name, backgroundImage string) (*canvas.Template, error)
	UpdateTemplate(ctx context.Context, t *canvas.Template) error
	DeleteTemplate(ctx context.Context, id, merchantID string) error
	AddElement(ctx context.Context, id, merchantID string, kind canvas.ElementType, el canvas.Element) (canvas.Element, error)
	UpdateElement(ctx context.Context, id, merchantID, elementID string, patch canvas.ElementPatch) (canvas.Element, error)
	RemoveElement(ctx context.Context, id, merchantID, elementID string) error
}

type TemplateHandler struct {
	store    TemplateStore
	uploader *services.UploadService
}

func NewTemplateHandler(store TemplateStore, uploader *services.UploadService) *TemplateHandler {
	return &TemplateHandler{store: store, uploader: uploader}
}

func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	templates, err := h.store.ListTemplates(ctx, merchantID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "unable to list templates")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"data": templates})
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
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

	respondWithJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	var req struct {
		Name            string `json:"name"`
		BackgroundImage string `json:"backgroundImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "template name is required")
		return
	}

	t, err := h.store.CreateTemplate(ctx, merchantID, req.Name, req.BackgroundImage)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "unable to create template")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{"data": t})
}

func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
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

	var req struct {
		Name            *string          `json:"name"`
		BackgroundImage *string          `json:"backgroundImage"`
		IsActive        *bool            `json:"is_active"`
		Elements        []canvas.Element `json:"elements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid template payload")
		return
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.BackgroundImage != nil {
		t.BackgroundImage = *req.BackgroundImage
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.Elements != nil {
		t.Elements = req.Elements
	}

	if err := h.store.UpdateTemplate(ctx, t); err != nil {
		respondWithError(w, http.StatusInternalServerError, "unable to update template")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	if err := h.store.DeleteTemplate(ctx, mux.Vars(r)["id"], merchantID); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "unable to delete template")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TemplateHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	var el canvas.Element
	if err := json.NewDecoder(r.Body).Decode(&el); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid element payload")
		return
	}

	added, err := h.store.AddElement(ctx, mux.Vars(r)["id"], merchantID, el.Type, el)
	if err != nil {
		respondElementError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{"data": added})
}

func (h *TemplateHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	var patch canvas.ElementPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid element payload")
		return
	}

	vars := mux.Vars(r)
	updated, err := h.store.UpdateElement(ctx, vars["id"], merchantID, vars["elementID"], patch)
	if err != nil {
		respondElementError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"data": updated})
}

func (h *TemplateHandler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	merchantID, ok := middleware.GetMerchantID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	vars := mux.Vars(r)
	if err := h.store.RemoveElement(ctx, vars["id"], merchantID, vars["elementID"]); err != nil {
		respondElementError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadImage accepts a multipart form with either a background_image or an
// element_image part and returns the stored URL the element model embeds.
// A failed upload preserves everything; the client keeps its prior state.
func (h *TemplateHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetMerchantID(r.Context()); !ok {
		respondWithError(w, http.StatusUnauthorized, "Merchant not authenticated")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	for _, field := range []string{"background_image", "element_image"} {
		if files := r.MultipartForm.File[field]; len(files) > 0 {
			url, err := h.uploader.SaveImage(field, files[0])
			if err != nil {
				respondWithJSON(w, http.StatusBadRequest, map[string]string{
					"status":  "error",
					"message": err.Error(),
				})
				return
			}
			respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
			return
		}
	}

	respondWithError(w, http.StatusBadRequest, "no image file in request")
}

func respondElementError(w http.ResponseWriter, err error) {
	var ve *canvas.ValidationError
	if errors.As(err, &ve) {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Message,
			"field": ve.Field,
		})
		return
	}
	if errors.Is(err, services.ErrTemplateNotFound) {
		respondWithError(w, http.StatusNotFound, "Template not found")
		return
	}
	respondWithError(w, http.StatusInternalServerError, "unable to modify element")
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
