// Package web serves the single-page form that collects a client name and
// renders the generated dossier.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	model "github.com/zhouzirui/dossier-agent/backend/internal/model/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/render"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.New("index.html").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templates, "templates/index.html"))

const failureMessage = "Failed to generate the dossier. Please try again."

// Generator runs the dossier pipeline.
type Generator interface {
	Generate(ctx context.Context, clientName string, observer toolsession.Observer) (*model.Dossier, error)
}

// Handler renders the form and, after a submission, the dossier.
type Handler struct {
	gen Generator
}

// New creates the page handler. With a nil gen, submissions show an error.
func New(gen Generator) *Handler {
	return &Handler{gen: gen}
}

// RegisterRoutes mounts the page routes. limits apply to form submissions only.
func (h *Handler) RegisterRoutes(r chi.Router, limits ...func(http.Handler) http.Handler) {
	r.Get("/", h.handleIndex)
	r.With(limits...).Post("/", h.handleSubmit)
}

type pageData struct {
	ClientName  string
	DossierHTML template.HTML
	RunID       string
	Tools       []string
	Error       string
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, pageData{})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, pageData{Error: "invalid form submission"})
		return
	}

	clientName := strings.TrimSpace(r.PostFormValue("client_name"))
	if clientName == "" {
		h.render(w, http.StatusOK, pageData{})
		return
	}

	if h.gen == nil {
		h.render(w, http.StatusServiceUnavailable, pageData{ClientName: clientName, Error: "Dossier generation is not configured."})
		return
	}

	// Blocks until the agent finishes; the page shows a spinner meanwhile.
	result, err := h.gen.Generate(r.Context(), clientName, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("[web] client=%q request cancelled", clientName)
			return
		}
		log.Printf("[web] client=%q generation failed: %v", clientName, err)
		h.render(w, http.StatusBadGateway, pageData{ClientName: clientName, Error: failureMessage})
		return
	}

	html, err := render.Markdown(result.Markdown)
	if err != nil {
		log.Printf("[web] run=%s render failed: %v", result.RunID, err)
		h.render(w, http.StatusInternalServerError, pageData{ClientName: clientName, Error: failureMessage})
		return
	}

	h.render(w, http.StatusOK, pageData{
		ClientName:  result.ClientName,
		DossierHTML: template.HTML(html),
		RunID:       result.RunID,
		Tools:       result.Tools,
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		log.Printf("[web] template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[web] failed to write page: %v", err)
	}
}
