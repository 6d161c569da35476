package relay

import (
	"context"

	"github.com/rowanvale/maildraft/internal/credentials"
)

// Message represents a fully-resolved email handed to the relay.
type Message struct {
	ReplyTo  string   // optional; set when the UI sender differs from the relay address
	To       []string // recipient addresses
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string // plain text body
	HTMLBody string // HTML body (optional)
}

// Sender defines the interface for transmitting a message through a mail
// relay. The From header is always the authenticated relay address from
// creds, never a caller-supplied value.
type Sender interface {
	// Send transmits the message and returns the relay message ID.
	Send(ctx context.Context, msg *Message, creds credentials.Credentials) (string, error)
}
