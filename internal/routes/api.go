package routes

import (
	"github.com/rowanvale/maildraft/internal/handler"
	"github.com/rowanvale/maildraft/internal/router"
)

// RegisterAPIRoutes registers the dispatch service's JSON API.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/api/health", handler.Health)

	// Drafting
	r.Post("/api/generate-email", deps.Compose.GenerateEmail)
	r.Post("/api/rewrite-email", deps.Compose.RewriteEmail)
	r.Post("/api/suggest-subject", deps.Compose.SuggestSubject)

	// Recipient validation
	r.Post("/api/validate-emails", handler.ValidateEmails)

	// Relay credential configuration
	r.Post("/api/setup-gmail", deps.Credentials.SetupGmail)
	r.Get("/api/check-gmail-config", deps.Credentials.CheckConfig)

	// Send dispatch and the scheduled-send registry
	r.Post("/api/send-email", deps.Dispatch.SendEmail)
	r.Get("/api/scheduled", deps.Dispatch.ListScheduled)
	r.Get("/api/scheduled/{id}", deps.Dispatch.GetScheduled)

	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics.Handler())
	}

	r.NotFound(handler.NotFound)
}
