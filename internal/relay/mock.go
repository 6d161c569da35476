package relay

import (
	"context"
	"sync"

	"github.com/rowanvale/maildraft/internal/credentials"
)

// MockSender is a test implementation of Sender. It records every
// transmission so tests can assert on the exact message and credentials used.
type MockSender struct {
	SendFunc func(ctx context.Context, msg *Message, creds credentials.Credentials) (string, error)

	mu    sync.Mutex
	sends []MockSend
}

type MockSend struct {
	Message     Message
	Credentials credentials.Credentials
}

// Send records the call and delegates to SendFunc or returns a fixed id.
func (m *MockSender) Send(ctx context.Context, msg *Message, creds credentials.Credentials) (string, error) {
	m.mu.Lock()
	m.sends = append(m.sends, MockSend{Message: *msg, Credentials: creds})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg, creds)
	}
	return "<mock-message-id>", nil
}

// Sends returns a copy of all recorded transmissions.
func (m *MockSender) Sends() []MockSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSend, len(m.sends))
	copy(out, m.sends)
	return out
}
