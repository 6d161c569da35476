// Package credentials holds the process-wide mail relay identity.
//
// At most one credential set is held at a time. It is written by the setup
// endpoint, read by every send, never persisted, and never echoed back to a
// client after initial submission. A request may carry its own credentials
// inline; those take precedence over the stored set for that request only.
package credentials

import (
	"strings"
	"sync"

	"github.com/rowanvale/maildraft/internal/address"
	"github.com/rowanvale/maildraft/internal/domain"
)

// AppPasswordLength is the fixed length of a Gmail app password.
const AppPasswordLength = 16

// Credentials is an authenticated mail-relay identity.
type Credentials struct {
	Address string
	Secret  string
}

// Store is a single-writer, multiple-reader slot for the process-wide
// credentials. The RWMutex removes the last-write-wins race between a
// configure call and concurrent sends: a send snapshots whatever set
// exists when it resolves credentials and is unaffected by later writes.
type Store struct {
	mu    sync.RWMutex
	creds *Credentials
}

func NewStore() *Store {
	return &Store{}
}

// Replace validates and installs a new credential set. A failed validation
// leaves any previously stored credentials untouched.
func (s *Store) Replace(addr, secret string) error {
	const op = "credentials.replace"

	if addr == "" || secret == "" {
		return domain.Invalid(op, "Email and app password are required")
	}
	if !address.IsValid(addr) {
		return domain.Invalid(op, "Invalid email format")
	}
	if len(secret) != AppPasswordLength {
		return domain.Invalid(op, "App password should be 16 characters")
	}

	s.mu.Lock()
	s.creds = &Credentials{Address: addr, Secret: secret}
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the stored credentials, or false if none are set.
func (s *Store) Get() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return Credentials{}, false
	}
	return *s.creds, true
}

// Configured reports whether a credential set is currently held,
// without revealing the secret.
func (s *Store) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds != nil
}

// MaskSecret renders a secret for confirmation output: first two characters
// kept, the rest replaced. Operates on runes so a multibyte secret never
// yields broken UTF-8. Never used anywhere near the SMTP transport.
func MaskSecret(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-2)
}
