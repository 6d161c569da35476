package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanvale/maildraft/internal/completion"
	"github.com/rowanvale/maildraft/internal/compose"
	"github.com/rowanvale/maildraft/internal/credentials"
	"github.com/rowanvale/maildraft/internal/dispatch"
	"github.com/rowanvale/maildraft/internal/handler"
	"github.com/rowanvale/maildraft/internal/relay"
	"github.com/rowanvale/maildraft/internal/router"
	"github.com/rowanvale/maildraft/internal/routes"
	"github.com/rowanvale/maildraft/internal/scheduler"
)

type testAPI struct {
	handler http.Handler
	store   *credentials.Store
	sender  *relay.MockSender
	sched   *scheduler.Scheduler
}

// newTestAPI wires the full route table against mocks. A nil provider
// exercises degraded mode the same way a missing GROQ_API_KEY does.
func newTestAPI(t *testing.T, provider completion.Client) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := credentials.NewStore()
	sender := &relay.MockSender{}
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	deps := routes.APIDeps{
		Compose:     handler.NewComposeHandler(compose.NewService(provider, logger), logger),
		Credentials: handler.NewCredentialsHandler(store, logger),
		Dispatch:    handler.NewDispatchHandler(dispatch.NewService(store, sender, sched, logger), sched, logger),
	}

	r := router.New()
	routes.RegisterAPIRoutes(r, deps)

	return &testAPI{handler: r, store: store, sender: sender, sched: sched}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (a *testAPI) configure(t *testing.T) {
	t.Helper()
	rec, _ := a.do(t, http.MethodPost, "/api/setup-gmail", map[string]string{
		"email":       "sender@gmail.com",
		"appPassword": "abcdabcdabcdabcd",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	rec, body := api.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestGenerateEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &completion.MockClient{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return "Subject: Hello\n\nDrafted body.", nil
			},
		}
		api := newTestAPI(t, provider)

		rec, body := api.do(t, http.MethodPost, "/api/generate-email", map[string]string{
			"prompt": "invite the team to lunch",
			"tone":   "friendly",
			"length": "short",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Subject: Hello\n\nDrafted body.", body["email"])

		meta := body["metadata"].(map[string]any)
		assert.Equal(t, "friendly", meta["tone"])
		assert.Equal(t, "short", meta["length"])
		assert.Equal(t, "groq", meta["provider"])
	})

	t.Run("missing prompt", func(t *testing.T) {
		api := newTestAPI(t, &completion.MockClient{})

		rec, body := api.do(t, http.MethodPost, "/api/generate-email", map[string]string{"prompt": ""})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Prompt is required", body["error"])
	})

	t.Run("no provider configured", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/generate-email", map[string]string{"prompt": "write something"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "GROQ not configured", body["error"])
		assert.NotContains(t, body, "email")
	})
}

func TestRewriteEmail(t *testing.T) {
	t.Run("degraded formalize without provider", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/rewrite-email", map[string]string{
			"content": "see you at 5",
			"action":  "formalize",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "formalize", body["action"])
		assert.Equal(t, true, body["degraded"])
		assert.Contains(t, body["content"], "Dear Sir or Madam")
		assert.Contains(t, body["content"], "see you at 5")
	})

	t.Run("missing content", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/rewrite-email", map[string]string{"action": "improve"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Content is required", body["error"])
	})
}

func TestSuggestSubject(t *testing.T) {
	t.Run("degraded placeholders without provider", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/suggest-subject", map[string]string{
			"prompt": "quarterly report delay",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["degraded"])
		subjects := body["subjects"].([]any)
		assert.Len(t, subjects, 3)
	})

	t.Run("provider result parsed", func(t *testing.T) {
		provider := &completion.MockClient{
			CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
				return `["One", "Two", "Three"]`, nil
			},
		}
		api := newTestAPI(t, provider)

		rec, body := api.do(t, http.MethodPost, "/api/suggest-subject", map[string]string{
			"emailContent": "the report is late",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		subjects := body["subjects"].([]any)
		require.Len(t, subjects, 3)
		assert.Equal(t, "One", subjects[0])
		assert.NotContains(t, body, "degraded")
	})

	t.Run("nothing to work from", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/suggest-subject", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Prompt or email content is required", body["error"])
	})
}

func TestValidateEmails(t *testing.T) {
	t.Run("partitions valid and invalid", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/validate-emails", map[string]any{
			"emails": []string{"a@b.com", "not-an-email", "c@d.org"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["validCount"])
		assert.Equal(t, float64(1), body["invalidCount"])
		assert.Equal(t, []any{"a@b.com", "c@d.org"}, body["validEmails"])
		assert.Equal(t, []any{"not-an-email"}, body["invalidEmails"])
	})

	tests := []struct {
		name string
		body any
	}{
		{"missing field", map[string]any{}},
		{"not an array", map[string]any{"emails": "a@b.com"}},
		{"empty array", map[string]any{"emails": []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, nil)

			rec, body := api.do(t, http.MethodPost, "/api/validate-emails", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Emails array is required", body["error"])
		})
	}
}

func TestSetupGmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/setup-gmail", map[string]string{
			"email":       "sender@gmail.com",
			"appPassword": "abcdabcdabcdabcd",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Gmail configured successfully", body["message"])
		assert.Equal(t, "sender@gmail.com", body["email"])
		assert.Equal(t, "ab**************", body["maskedPassword"])
		assert.True(t, api.store.Configured())
	})

	t.Run("wrong password length leaves config unchanged", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.configure(t)

		for _, pw := range []string{"short", "abcdabcdabcdabc", "abcdabcdabcdabcda"} {
			rec, body := api.do(t, http.MethodPost, "/api/setup-gmail", map[string]string{
				"email":       "other@gmail.com",
				"appPassword": pw,
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "App password should be 16 characters", body["error"])
		}

		creds, ok := api.store.Get()
		require.True(t, ok)
		assert.Equal(t, "sender@gmail.com", creds.Address)
	})

	t.Run("invalid email", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/setup-gmail", map[string]string{
			"email":       "not-an-email",
			"appPassword": "abcdabcdabcdabcd",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid email format", body["error"])
		assert.False(t, api.store.Configured())
	})

	t.Run("missing fields", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/setup-gmail", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and app password are required", body["error"])
	})
}

func TestCheckGmailConfig(t *testing.T) {
	api := newTestAPI(t, nil)

	rec, body := api.do(t, http.MethodGet, "/api/check-gmail-config", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["configured"])

	api.configure(t)

	rec, body = api.do(t, http.MethodGet, "/api/check-gmail-config", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["configured"])
}

func TestSendEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.configure(t)

		rec, body := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to":      []string{"rcpt@example.com"},
			"subject": "Hello",
			"content": "First line\nSecond line",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.NotEmpty(t, body["messageId"])

		sends := api.sender.Sends()
		require.Len(t, sends, 1)
		assert.Equal(t, []string{"rcpt@example.com"}, sends[0].Message.To)
		assert.Equal(t, "First line<br>Second line", sends[0].Message.HTMLBody)
		assert.Equal(t, "sender@gmail.com", sends[0].Credentials.Address)
	})

	t.Run("single string recipient accepted", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.configure(t)

		rec, _ := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to":      "rcpt@example.com",
			"subject": "Hello",
			"content": "Body",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, api.sender.Sends(), 1)
	})

	t.Run("missing fields", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.configure(t)

		rec, body := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to": []string{"rcpt@example.com"},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required fields: subject, content", body["error"])
		assert.Empty(t, api.sender.Sends())
	})

	t.Run("not configured", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, body := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to":      []string{"rcpt@example.com"},
			"subject": "Hello",
			"content": "Body",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Gmail not configured. Please set it up first.", body["error"])
	})

	t.Run("invalid recipient", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.configure(t)

		rec, body := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to":      []string{"good@example.com", "not-an-email"},
			"subject": "Hello",
			"content": "Body",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid email address: not-an-email", body["error"])
		assert.Empty(t, api.sender.Sends())
	})

	t.Run("per-request credentials without setup", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec, _ := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
			"to":      []string{"rcpt@example.com"},
			"subject": "Hello",
			"content": "Body",
			"credentials": map[string]string{
				"email":       "override@gmail.com",
				"appPassword": "abcdabcdabcdabcd",
			},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		sends := api.sender.Sends()
		require.Len(t, sends, 1)
		assert.Equal(t, "override@gmail.com", sends[0].Credentials.Address)
	})
}

func TestScheduledSends(t *testing.T) {
	api := newTestAPI(t, nil)
	api.configure(t)

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	rec, body := api.do(t, http.MethodPost, "/api/send-email", map[string]any{
		"to":          []string{"rcpt@example.com"},
		"subject":     "Later",
		"content":     "Body",
		"scheduledAt": at.Format(time.RFC3339),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["scheduled"])
	assert.NotContains(t, body, "messageId")
	taskID, _ := body["taskId"].(string)
	require.NotEmpty(t, taskID)
	assert.Empty(t, api.sender.Sends())

	rec, body = api.do(t, http.MethodGet, "/api/scheduled", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0].(map[string]any)["id"])

	rec, body = api.do(t, http.MethodGet, "/api/scheduled/"+taskID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	task := body["task"].(map[string]any)
	assert.Equal(t, "pending", task["state"])

	rec, body = api.do(t, http.MethodGet, "/api/scheduled/no-such-task", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "scheduled send not found: no-such-task", body["error"])
}

func TestUnknownEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)

	rec, body := api.do(t, http.MethodPost, "/api/does-not-exist", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["error"])
}
