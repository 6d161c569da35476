package relay

import (
	"strings"
	"testing"
)

func TestNewMessageID(t *testing.T) {
	id := newMessageID("user@gmail.com")
	if !strings.HasSuffix(id, "@gmail.com") {
		t.Errorf("newMessageID() = %q, want gmail.com host part", id)
	}
	if strings.HasPrefix(id, "@") || strings.Count(id, "@") != 1 {
		t.Errorf("newMessageID() = %q, malformed", id)
	}

	// Degenerate inputs still produce a usable identifier.
	for _, addr := range []string{"", "no-at-sign", "trailing@"} {
		id := newMessageID(addr)
		if !strings.HasSuffix(id, "@localhost") {
			t.Errorf("newMessageID(%q) = %q, want localhost fallback", addr, id)
		}
	}

	// Identifiers are unique per call.
	if newMessageID("a@b.com") == newMessageID("a@b.com") {
		t.Error("newMessageID() should not repeat")
	}
}
