// Package respond writes the JSON envelopes of the HTTP API.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Envelope is the body of every API response.
type Envelope struct {
	Result   interface{}        `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
	Category model.Category     `json:"category,omitempty"`
	Fields   []model.FieldError `json:"fields,omitempty"`
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func OK(w http.ResponseWriter, result interface{}) {
	write(w, http.StatusOK, Envelope{Result: result})
}

func Created(w http.ResponseWriter, result interface{}) {
	write(w, http.StatusCreated, Envelope{Result: result})
}

// Fail writes err with the given status.
func Fail(w http.ResponseWriter, status int, err error) {
	write(w, status, Envelope{Error: err.Error(), Category: model.Categorize(err)})
}

// Status maps a service error to its HTTP status.
func Status(err error) int {
	var (
		validationErr *model.ValidationError
		notFoundErr   *model.NotFoundError
		permissionErr *model.PermissionError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &permissionErr):
		return http.StatusForbidden
	}

	return http.StatusInternalServerError
}

// Error writes a service error. Internal errors are not exposed to the caller.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	body := Envelope{Error: err.Error(), Category: model.Categorize(err)}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		body.Fields = validationErr.Fields
	}

	if status == http.StatusInternalServerError {
		body.Error = "internal server error"
	}

	write(w, status, body)
}
