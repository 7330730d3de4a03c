package dossier

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	model "github.com/zhouzirui/dossier-agent/backend/internal/model/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/render"
	dossierService "github.com/zhouzirui/dossier-agent/backend/internal/service/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
	"github.com/zhouzirui/dossier-agent/backend/pkg/utils"
)

// Generator runs the dossier pipeline.
type Generator interface {
	Generate(ctx context.Context, clientName string, observer toolsession.Observer) (*model.Dossier, error)
}

// Handler exposes dossier generation as JSON and as a Server-Sent Events stream.
type Handler struct {
	gen Generator
}

// New creates the dossier API handler. A nil gen makes every route answer 503.
func New(gen Generator) *Handler {
	return &Handler{gen: gen}
}

// RegisterRoutes mounts the dossier routes. limits apply to the generate routes only.
func (h *Handler) RegisterRoutes(r chi.Router, limits ...func(http.Handler) http.Handler) {
	r.With(limits...).Post("/dossier", h.handleGenerate)
	r.With(limits...).Get("/dossier/stream", h.handleStream)
}

// GenerateResponse is the JSON body returned for a finished dossier.
type GenerateResponse struct {
	RunID      string   `json:"runId"`
	ClientName string   `json:"clientName"`
	Markdown   string   `json:"markdown"`
	HTML       string   `json:"html"`
	Tools      []string `json:"tools"`
	DurationMs int64    `json:"durationMs"`
}

// StreamResponse is one SSE chunk of a streamed run.
type StreamResponse struct {
	Event      string `json:"event"`
	ClientName string `json:"clientName,omitempty"`
	RunID      string `json:"runId,omitempty"`
	Tool       string `json:"tool,omitempty"`
	Phase      string `json:"phase,omitempty"`
	Content    string `json:"content,omitempty"`
	HTML       string `json:"html,omitempty"`
	Finished   bool   `json:"finished,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "dossier generation unavailable")
		return
	}

	var payload struct {
		ClientName string `json:"clientName"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.ClientName) == "" {
		utils.RespondError(w, http.StatusBadRequest, "clientName is required")
		return
	}

	result, err := h.gen.Generate(r.Context(), payload.ClientName, nil)
	if err != nil {
		respondGenerateError(w, err)
		return
	}

	html, err := render.Markdown(result.Markdown)
	if err != nil {
		log.Printf("[http] run=%s render failed: %v", result.RunID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to render dossier")
		return
	}

	utils.RespondJSON(w, http.StatusOK, GenerateResponse{
		RunID:      result.RunID,
		ClientName: result.ClientName,
		Markdown:   result.Markdown,
		HTML:       html,
		Tools:      result.Tools,
		DurationMs: result.Duration.Milliseconds(),
	})
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "dossier generation unavailable")
		return
	}

	clientName := strings.TrimSpace(r.URL.Query().Get("clientName"))
	if clientName == "" {
		utils.RespondError(w, http.StatusBadRequest, "clientName query parameter is required")
		return
	}

	sse, ok := utils.NewSSEWriter(w)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Tools may run concurrently inside the loop; the stream is not.
	var mu sync.Mutex
	send := func(resp StreamResponse) {
		mu.Lock()
		defer mu.Unlock()
		sse.Send(resp)
	}

	send(StreamResponse{Event: "start", ClientName: clientName})

	result, err := h.gen.Generate(r.Context(), clientName, func(ev toolsession.ToolEvent) {
		resp := StreamResponse{Event: "tool", Tool: ev.Name, Phase: string(ev.Phase)}
		if ev.Err != nil {
			resp.Error = ev.Err.Error()
		}
		send(resp)
	})
	if err != nil {
		log.Printf("[stream] client=%q failed: %v", clientName, err)
		send(StreamResponse{Event: "error", Error: "dossier generation failed"})
		return
	}

	html, err := render.Markdown(result.Markdown)
	if err != nil {
		log.Printf("[stream] run=%s render failed: %v", result.RunID, err)
	}

	send(StreamResponse{Event: "message", RunID: result.RunID, ClientName: result.ClientName, Content: result.Markdown, HTML: html})
	send(StreamResponse{Event: "end", RunID: result.RunID, Finished: true})
}

func respondGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dossierService.ErrEmptyClientName):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		log.Printf("[http] dossier request cancelled by client")
	default:
		log.Printf("[http] dossier generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "dossier generation failed")
	}
}
