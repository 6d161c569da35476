package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/rowanvale/maildraft/internal/credentials"
)

// SMTPSender implements Sender using go-mail.
// Features:
// - Automatic TLS/STARTTLS selection based on port
// - Auth method auto-discovery (PLAIN, LOGIN, CRAM-MD5, SCRAM)
// - Proper MIME multipart construction for text+HTML bodies
//
// Credentials are passed per call, not held on the sender, so a send that is
// already building its transport is unaffected by later reconfiguration.
type SMTPSender struct {
	host   string
	port   int
	logger *slog.Logger
}

// NewSMTPSender creates an SMTP relay sender for the given endpoint.
// For Gmail this is smtp.gmail.com:465 (implicit TLS).
func NewSMTPSender(host string, port int, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{host: host, port: port, logger: logger}
}

// Send transmits msg through the relay authenticated as creds.
func (s *SMTPSender) Send(ctx context.Context, msg *Message, creds credentials.Credentials) (string, error) {
	s.logger.Info("smtp: preparing email",
		"to", msg.To,
		"from", creds.Address,
		"subject", msg.Subject,
		"host", s.host,
		"port", s.port,
	)

	m := mail.NewMsg()

	// From is always the authenticated account; the relay rejects anything else.
	if err := m.From(creds.Address); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return "", fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	if err := m.To(msg.To...); err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return "", fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return "", fmt.Errorf("invalid bcc address: %w", err)
		}
	}

	m.Subject(msg.Subject)

	// Prefer HTML with text fallback, or just text.
	if msg.HTMLBody != "" && msg.TextBody != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	} else if msg.HTMLBody != "" {
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	} else {
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	// Assign our own Message-ID so callers get a stable identifier back;
	// SMTP itself does not return one.
	id := newMessageID(creds.Address)
	m.SetMessageIDWithValue(id)

	client, err := mail.NewClient(s.host, s.clientOptions(creds)...)
	if err != nil {
		return "", fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("smtp: failed to send email", "error", err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("smtp: email sent successfully", "to", msg.To, "message_id", id)
	return "<" + id + ">", nil
}

// clientOptions returns go-mail client options for the configured endpoint.
func (s *SMTPSender) clientOptions(creds credentials.Credentials) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(30 * time.Second),
	}

	switch s.port {
	case 465:
		// Implicit TLS (SMTPS) - Gmail's app-password port
		opts = append(opts, mail.WithSSL())
	case 587:
		// STARTTLS (submission port)
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	opts = append(opts,
		mail.WithUsername(creds.Address),
		mail.WithPassword(creds.Secret),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
	)

	return opts
}

// newMessageID builds an RFC 5322 style message identifier scoped to the
// sending account's domain.
func newMessageID(fromAddr string) string {
	host := "localhost"
	if i := strings.LastIndex(fromAddr, "@"); i >= 0 && i < len(fromAddr)-1 {
		host = fromAddr[i+1:]
	}
	return fmt.Sprintf("%s@%s", uuid.New().String(), host)
}
