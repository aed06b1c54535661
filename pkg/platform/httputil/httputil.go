// Package httputil provides JSON response helpers that map domain error
// codes onto HTTP statuses. Internal errors never leak their description to
// clients; everything else returns the domain message verbatim.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "complia/pkg/domain-errors"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

var codeStatus = map[dErrors.Code]int{
	dErrors.CodeBadRequest:              http.StatusBadRequest,
	dErrors.CodeInvalidInput:            http.StatusBadRequest,
	dErrors.CodeValidation:              http.StatusUnprocessableEntity,
	dErrors.CodeUnsupportedFormat:       http.StatusBadRequest,
	dErrors.CodeNotFound:                http.StatusNotFound,
	dErrors.CodeNoApplicableRegulations: http.StatusUnprocessableEntity,
	dErrors.CodeEmptyAggregationInput:   http.StatusUnprocessableEntity,
	dErrors.CodeConflict:                http.StatusConflict,
	dErrors.CodeInvariantViolation:      http.StatusConflict,
	dErrors.CodeUnauthorized:            http.StatusUnauthorized,
	dErrors.CodeForbidden:               http.StatusForbidden,
	dErrors.CodeTimeout:                 http.StatusGatewayTimeout,
	dErrors.CodeCancelled:               499, // client closed request
	dErrors.CodeInternal:                http.StatusInternalServerError,
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a (domain) error onto an HTTP error response. Uncoded
// errors are treated as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Description = err.Error()
	}
	WriteJSON(w, status, body)
}

// Decode parses a JSON request body into T, logging and responding on
// failure. The boolean reports whether the caller should continue.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if logger != nil {
			logger.DebugContext(r.Context(), "request body rejected", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return v, false
	}
	return v, true
}
