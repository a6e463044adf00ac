package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hackgods/homecare-visit-scheduling/internal/frequency"
	"github.com/hackgods/homecare-visit-scheduling/internal/visit"
)

var errNotConfigured = errors.New("dependency not configured")

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// handleCalculationError maps next-visit and frequency errors to responses.
// Unknown errors are logged by the caller and never leak to the client.
func (h *handlers) handleCalculationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, visit.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, visit.ErrFrequencyNotFound):
		writeError(w, http.StatusNotFound, "frequency_not_found", err.Error())
	case errors.Is(err, visit.ErrPatientHasNoFrequency):
		writeError(w, http.StatusConflict, "patient_has_no_frequency", err.Error())
	case errors.Is(err, visit.ErrFrequencyInactive):
		writeError(w, http.StatusConflict, "frequency_inactive", err.Error())
	case frequency.IsConfigurationError(err):
		writeError(w, http.StatusUnprocessableEntity, "invalid_frequency_configuration", err.Error())
	default:
		h.logger.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("calculation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
