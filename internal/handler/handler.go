package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"optika/internal/model"

	"github.com/rs/zerolog"
)

// requestIDHeader carries the correlation id set by the middleware chain.
const requestIDHeader = "X-Request-ID"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: w.Header().Get(requestIDHeader),
	})
}

// writeDomainError maps a service error onto an HTTP response: validation
// failures are 400, conflicts 409, missing resources 404 and everything
// else a generic 500 that leaks no internal detail.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		var status int
		switch de.Kind {
		case model.KindValidation:
			status = http.StatusBadRequest
		case model.KindConflict:
			status = http.StatusConflict
		case model.KindNotFound:
			status = http.StatusNotFound
		default:
			status = http.StatusInternalServerError
		}
		writeError(w, status, de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError,
		"internal server error", logger)
}

// pathID extracts the numeric id segment following prefix, ignoring any
// trailing sub-path.
func pathID(path, prefix string) (int64, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return 0, errors.New("id is required")
	}
	return strconv.ParseInt(rest, 10, 64)
}
