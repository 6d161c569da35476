// Package dispatch implements the send flow: precondition checks, credential
// resolution, message construction, and hand-off to the relay, either
// synchronously or through the scheduler.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rowanvale/maildraft/internal/address"
	"github.com/rowanvale/maildraft/internal/credentials"
	"github.com/rowanvale/maildraft/internal/domain"
	"github.com/rowanvale/maildraft/internal/relay"
	"github.com/rowanvale/maildraft/internal/scheduler"
	"github.com/rowanvale/maildraft/internal/telemetry"
)

// SendRequest describes one email to dispatch.
type SendRequest struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Content string // plain text, newline-delimited

	// From is the UI-supplied sender. It is used only as Reply-To, and only
	// when it differs from the authenticated relay address.
	From string

	// ScheduledAt defers the transmission when set to a future time.
	ScheduledAt *time.Time
}

// SendResult is the outcome of Send. Either MessageID is set (synchronous
// transmission) or Scheduled is true with the task details. Acceptance of a
// scheduled send is not a delivery guarantee.
type SendResult struct {
	MessageID   string
	Scheduled   bool
	ScheduledAt time.Time
	TaskID      string
}

// Service coordinates credential resolution, validation and relay hand-off.
type Service struct {
	store  *credentials.Store
	sender relay.Sender
	sched  *scheduler.Scheduler
	logger *slog.Logger

	now func() time.Time
}

// NewService creates a dispatch service.
func NewService(store *credentials.Store, sender relay.Sender, sched *scheduler.Scheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		sender: sender,
		sched:  sched,
		logger: logger,
		now:    time.Now,
	}
}

// Send validates the request and transmits it through the relay.
//
// Precondition checks run in a fixed order, all before the relay is touched:
// required fields, then credential resolution, then per-address syntax
// (stopping at the first offending address). A request-supplied credential
// override takes precedence over the process-wide set for this request only.
func (s *Service) Send(ctx context.Context, req SendRequest, override *credentials.Credentials) (*SendResult, error) {
	const op = "dispatch.send"

	if missing := missingFields(req); len(missing) > 0 {
		return nil, domain.Errorf(domain.EINVALID, op, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	creds, err := s.resolveCredentials(override)
	if err != nil {
		return nil, err
	}

	if bad, found := address.FirstInvalid(req.To, req.Cc, req.Bcc); found {
		return nil, domain.Errorf(domain.EINVALID, op, "Invalid email address: %s", bad)
	}

	msg := buildMessage(req, creds)

	if req.ScheduledAt != nil && req.ScheduledAt.After(s.now()) {
		// The deferred task owns full snapshots of the message and the
		// credentials. Reconfiguring the store between acceptance and firing
		// never changes what an accepted send transmits.
		at := *req.ScheduledAt
		task := s.sched.Schedule(at, func(ctx context.Context) (string, error) {
			return s.transmit(ctx, msg, creds)
		})
		return &SendResult{Scheduled: true, ScheduledAt: at, TaskID: task.ID}, nil
	}

	id, err := s.transmit(ctx, msg, creds)
	if err != nil {
		return nil, domain.WrapError(err, domain.ESEND, op, "Failed to send email")
	}
	return &SendResult{MessageID: id}, nil
}

// transmit hands the message to the relay and records the outcome.
// No retry on failure; the error is terminal for this attempt.
func (s *Service) transmit(ctx context.Context, msg *relay.Message, creds credentials.Credentials) (string, error) {
	id, err := s.sender.Send(ctx, msg, creds)
	if err != nil {
		telemetry.Business.EmailsFailed.Inc()
		return "", err
	}
	telemetry.Business.EmailsSent.Inc()
	return id, nil
}

func (s *Service) resolveCredentials(override *credentials.Credentials) (credentials.Credentials, error) {
	if override != nil && override.Address != "" && override.Secret != "" {
		return *override, nil
	}
	creds, ok := s.store.Get()
	if !ok {
		return credentials.Credentials{}, domain.NotConfigured("dispatch.send", "Gmail not configured. Please set it up first.")
	}
	return creds, nil
}

func missingFields(req SendRequest) []string {
	var missing []string
	if len(req.To) == 0 {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(req.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(req.Content) == "" {
		missing = append(missing, "content")
	}
	return missing
}

// buildMessage renders the relay message. The body goes out both as plain
// text and as HTML; the HTML rendering is newline-to-line-break conversion
// only, no escaping or templating.
func buildMessage(req SendRequest, creds credentials.Credentials) *relay.Message {
	msg := &relay.Message{
		To:       req.To,
		Cc:       req.Cc,
		Bcc:      req.Bcc,
		Subject:  req.Subject,
		TextBody: req.Content,
		HTMLBody: strings.ReplaceAll(req.Content, "\n", "<br>"),
	}
	if req.From != "" && req.From != creds.Address {
		msg.ReplyTo = req.From
	}
	return msg
}
