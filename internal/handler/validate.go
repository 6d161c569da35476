package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rowanvale/maildraft/internal/address"
	"github.com/rowanvale/maildraft/internal/domain"
)

type validateRequest struct {
	Emails json.RawMessage `json:"emails"`
}

type validateResponse struct {
	Success       bool     `json:"success"`
	ValidEmails   []string `json:"validEmails"`
	InvalidEmails []string `json:"invalidEmails"`
	ValidCount    int      `json:"validCount"`
	InvalidCount  int      `json:"invalidCount"`
}

// ValidateEmails handles POST /api/validate-emails. It partitions the input
// into syntactically valid and invalid addresses; a missing, non-array or
// empty list is rejected.
func ValidateEmails(w http.ResponseWriter, r *http.Request) {
	const op = "handler.validate"

	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var emails []string
	if len(req.Emails) == 0 || json.Unmarshal(req.Emails, &emails) != nil || len(emails) == 0 {
		ErrorResponse(w, r, domain.Invalid(op, "Emails array is required"))
		return
	}

	valid, invalid := address.Partition(emails)
	RespondJSON(w, http.StatusOK, validateResponse{
		Success:       true,
		ValidEmails:   valid,
		InvalidEmails: invalid,
		ValidCount:    len(valid),
		InvalidCount:  len(invalid),
	})
}
