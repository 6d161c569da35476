package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanvale/maildraft/internal/credentials"
	"github.com/rowanvale/maildraft/internal/dispatch"
	"github.com/rowanvale/maildraft/internal/domain"
	"github.com/rowanvale/maildraft/internal/scheduler"
)

// DispatchHandler handles email sending and the scheduled-send registry.
type DispatchHandler struct {
	service *dispatch.Service
	sched   *scheduler.Scheduler
	logger  *slog.Logger
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(service *dispatch.Service, sched *scheduler.Scheduler, logger *slog.Logger) *DispatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchHandler{service: service, sched: sched, logger: logger}
}

type sendCredentials struct {
	Email       string `json:"email"`
	AppPassword string `json:"appPassword"`
}

type sendRequest struct {
	To          stringList       `json:"to"`
	Cc          stringList       `json:"cc"`
	Bcc         stringList       `json:"bcc"`
	Subject     string           `json:"subject"`
	Content     string           `json:"content"`
	From        string           `json:"from"`
	ScheduledAt *time.Time       `json:"scheduledAt"`
	Credentials *sendCredentials `json:"credentials"`
}

type sendResponse struct {
	Success     bool       `json:"success"`
	MessageID   string     `json:"messageId,omitempty"`
	Scheduled   bool       `json:"scheduled,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	TaskID      string     `json:"taskId,omitempty"`
}

// SendEmail handles POST /api/send-email.
func (h *DispatchHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var override *credentials.Credentials
	if req.Credentials != nil {
		override = &credentials.Credentials{
			Address: req.Credentials.Email,
			Secret:  req.Credentials.AppPassword,
		}
	}

	res, err := h.service.Send(r.Context(), dispatch.SendRequest{
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		Content:     req.Content,
		From:        req.From,
		ScheduledAt: req.ScheduledAt,
	}, override)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if res.Scheduled {
		at := res.ScheduledAt
		RespondJSON(w, http.StatusOK, sendResponse{
			Success:     true,
			Scheduled:   true,
			ScheduledAt: &at,
			TaskID:      res.TaskID,
		})
		return
	}

	RespondJSON(w, http.StatusOK, sendResponse{
		Success:   true,
		MessageID: res.MessageID,
	})
}

type listScheduledResponse struct {
	Success bool             `json:"success"`
	Tasks   []scheduler.Task `json:"tasks"`
}

// ListScheduled handles GET /api/scheduled.
func (h *DispatchHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, listScheduledResponse{
		Success: true,
		Tasks:   h.sched.List(),
	})
}

type getScheduledResponse struct {
	Success bool           `json:"success"`
	Task    scheduler.Task `json:"task"`
}

// GetScheduled handles GET /api/scheduled/{id}.
func (h *DispatchHandler) GetScheduled(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := h.sched.Get(id)
	if !ok {
		ErrorResponse(w, r, domain.NotFound("handler.scheduled", "scheduled send", id))
		return
	}
	RespondJSON(w, http.StatusOK, getScheduledResponse{Success: true, Task: task})
}
