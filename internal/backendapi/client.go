// Package backendapi is the client for the issuing backend: template fetch,
// image upload and the PDF rendering call.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/davyaugustnurismail/ukk-sub001/internal/canvas"
)

// UploadError is a failed image upload. The caller keeps its prior state and
// surfaces the message as a transient notification.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return "upload failed: " + e.Message }

// ExportError is a failed PDF generation call. Template state is never
// touched by a failed export.
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string { return "pdf export failed: " + e.Message }

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// BaseURL exposes the configured backend origin for URL normalization.
func (c *Client) BaseURL() string { return c.baseURL }

// GetTemplate fetches one template. The backend wraps the payload in a
// {"data": ...} envelope.
func (c *Client) GetTemplate(ctx context.Context, id string) (*canvas.Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sertifikat-templates/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch template %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch template %s: unexpected status %d", id, resp.StatusCode)
	}

	var envelope struct {
		Data canvas.Template `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return &envelope.Data, nil
}

// UploadImage posts one file as multipart form data. field is either
// "background_image" or "element_image". Returns the stored URL.
func (c *Client) UploadImage(ctx context.Context, field, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.WriteField("_token", c.token); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sertifikat-templates/upload-image", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &UploadError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var result struct {
		URL     string `json:"url"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &UploadError{Message: "unreadable upload response"}
	}
	if result.Status == "error" || resp.StatusCode >= 400 {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return "", &UploadError{Message: msg}
	}
	return result.URL, nil
}

// PDFPayload is the generate-pdf request body. Elements must already have
// passed through the shape rasterizer; the receiving renderer only knows
// text, image and qrcode.
type PDFPayload struct {
	RecipientName     string           `json:"recipient_name"`
	CertificateNumber string           `json:"certificate_number"`
	Date              string           `json:"date"`
	MerchantID        string           `json:"merchant_id"`
	Instruktur        string           `json:"instruktur"`
	Elements          []canvas.Element `json:"elements"`
}

// GeneratePDF posts the payload and returns the rendered PDF bytes. A JSON
// body on a non-PDF response is decoded for its server message.
func (c *Client) GeneratePDF(ctx context.Context, templateID string, payload PDFPayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/sertifikat-templates/%s/generate-pdf", c.baseURL, templateID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ExportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/pdf") {
		return io.ReadAll(resp.Body)
	}

	var result struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Message == "" {
		return nil, &ExportError{Message: "gagal membuat PDF sertifikat"}
	}
	return nil, &ExportError{Message: result.Message}
}

// NormalizeImageURL resolves a stored image URL against the backend origin.
//
// Data-URLs pass through untouched. Absolute URLs are used as-is, except a
// known malformed form the backend once produced, where the slash before
// "certificates" is missing and the storage segment was dropped
// ("http://host:8000certificates/..."); those are repaired to
// ".../storage/certificates/...". Relative paths lose any leading "storage/"
// and are re-prefixed with "<base>/storage/".
func NormalizeImageURL(base, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return raw
	}
	if strings.HasPrefix(raw, "http") {
		if i := strings.Index(raw, ":8000certificates/"); i >= 0 {
			return raw[:i] + ":8000/storage/certificates/" + raw[i+len(":8000certificates/"):]
		}
		return raw
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(raw, "/"), "storage/")
	return strings.TrimSuffix(base, "/") + "/storage/" + rel
}
