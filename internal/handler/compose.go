package handler

import (
	"log/slog"
	"net/http"

	"github.com/rowanvale/maildraft/internal/compose"
)

// ComposeHandler handles draft generation, rewriting and subject suggestions.
type ComposeHandler struct {
	service *compose.Service
	logger  *slog.Logger
}

// NewComposeHandler creates a new compose handler.
func NewComposeHandler(service *compose.Service, logger *slog.Logger) *ComposeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComposeHandler{service: service, logger: logger}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Tone   string `json:"tone"`
	Length string `json:"length"`
}

type generateMetadata struct {
	Tone     string `json:"tone"`
	Length   string `json:"length"`
	Provider string `json:"provider"`
}

type generateResponse struct {
	Success  bool             `json:"success"`
	Email    string           `json:"email"`
	Metadata generateMetadata `json:"metadata"`
}

// GenerateEmail handles POST /api/generate-email.
func (h *ComposeHandler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	gen, err := h.service.Generate(r.Context(), req.Prompt, req.Tone, req.Length)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Email:   gen.Email,
		Metadata: generateMetadata{
			Tone:     gen.Tone,
			Length:   gen.Length,
			Provider: "groq",
		},
	})
}

type rewriteRequest struct {
	Content string `json:"content"`
	Action  string `json:"action"`
	Tone    string `json:"tone"`
	Length  string `json:"length"`
}

type rewriteResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Action   string `json:"action"`
	Degraded bool   `json:"degraded,omitempty"`
}

// RewriteEmail handles POST /api/rewrite-email.
func (h *ComposeHandler) RewriteEmail(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	rw, err := h.service.RewriteContent(r.Context(), req.Content, req.Action, req.Tone, req.Length)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, rewriteResponse{
		Success:  true,
		Content:  rw.Content,
		Action:   rw.Action,
		Degraded: rw.Degraded,
	})
}

type suggestRequest struct {
	Prompt       string `json:"prompt"`
	EmailContent string `json:"emailContent"`
}

type suggestResponse struct {
	Success  bool     `json:"success"`
	Subjects []string `json:"subjects"`
	Degraded bool     `json:"degraded,omitempty"`
}

// SuggestSubject handles POST /api/suggest-subject.
func (h *ComposeHandler) SuggestSubject(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	sug, err := h.service.SuggestSubjects(r.Context(), req.Prompt, req.EmailContent)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, suggestResponse{
		Success:  true,
		Subjects: sug.Subjects,
		Degraded: sug.Degraded,
	})
}
