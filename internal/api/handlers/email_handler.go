package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securevote/securevote-be/internal/mail"
)

// EmailHandler serves the email template previews.
type EmailHandler struct {
	renderer *mail.Renderer
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(renderer *mail.Renderer) *EmailHandler {
	return &EmailHandler{renderer: renderer}
}

// EmailPreview is a template description with its rendered body.
type EmailPreview struct {
	Template mail.TemplateInfo `json:"template"`
	HTML     string            `json:"html"`
}

// List describes every template.
func (h *EmailHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.renderer.Templates())
}

// Preview renders one template with placeholder values. ?format=html
// returns the raw document instead of JSON.
func (h *EmailHandler) Preview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := mail.Lookup(name)
	if err != nil {
		writeServiceError(w, err, "Failed to render template")
		return
	}
	body, err := h.renderer.Preview(name)
	if err != nil {
		writeServiceError(w, err, "Failed to render template")
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
		return
	}
	writeJSON(w, http.StatusOK, EmailPreview{Template: info, HTML: body})
}

// Styles serves the shared email stylesheet.
func (h *EmailHandler) Styles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(h.renderer.Styles()))
}
