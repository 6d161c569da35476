package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/rowanvale/maildraft/internal/domain"
)

// errorBody is the wire shape of every failure response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes payload as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("failed to encode response", "error", err)
		}
	}
}

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status code.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID, domain.ENOTCONFIGURED:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EPROVIDER, domain.ESEND, domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes a domain error as the standard JSON error shape.
// Internal detail is logged, never surfaced; provider and relay failures
// carry their upstream detail in the details field.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"op", domain.ErrorOp(err),
			"code", code,
			"path", r.URL.Path,
			"error", err,
		)
	}

	RespondJSON(w, status, errorBody{
		Error:   domain.ErrorMessage(err),
		Details: domain.ErrorDetails(err),
	})
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusNotFound, errorBody{Error: "Endpoint not found"})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return domain.WrapError(err, domain.EINVALID, "handler.decode", "Invalid request body")
	}
	return nil
}

// stringList accepts either a JSON array of strings or a single string,
// matching what the browser form has historically submitted for recipient
// fields.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*s = nil
		return nil
	}
	*s = []string{one}
	return nil
}
