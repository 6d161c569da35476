package routes

import (
	"github.com/rowanvale/maildraft/internal/handler"
	"github.com/rowanvale/maildraft/internal/middleware"
)

// APIDeps carries the handlers and middleware the API routes need.
type APIDeps struct {
	Compose     *handler.ComposeHandler
	Credentials *handler.CredentialsHandler
	Dispatch    *handler.DispatchHandler
	Metrics     *middleware.Metrics
}
