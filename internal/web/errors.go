package web

// errors.go turns handler failures into JSON error bodies.
//
// Every error response has the shape {"error": "<message>"}. The technical
// error is logged with the request ID; clients only see the message chosen
// here, never driver or SQL detail.

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/JonMunkholm/marvel-explorer/internal/logging"
	"github.com/JonMunkholm/marvel-explorer/internal/query"
)

// Client-facing messages.
const (
	msgMissingCharacterName = "Missing character_name parameter"
	msgDatabase             = "Database query failed"
	msgInternal             = "Internal server error"
	msgNotFound             = "not found"
	msgMethodNotAllowed     = "method not allowed"
	msgUnavailable          = "database unavailable"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError logs err and writes message with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int, message string) {
	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Debug("request rejected", args...)
	}

	writeJSON(w, r, statusCode, ErrorResponse{Error: message})
}

// respondQueryError maps a query layer error to its status code.
func respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, query.ErrMissingCharacterName):
		respondError(w, r, err, http.StatusBadRequest, msgMissingCharacterName)
	case errors.Is(err, query.ErrDatabase):
		respondError(w, r, err, http.StatusInternalServerError, msgDatabase)
	default:
		respondError(w, r, err, http.StatusInternalServerError, msgInternal)
	}
}

// recoverer turns a panic into a 500 JSON response.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).Error("panic recovered",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
		}()
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, nil, http.StatusNotFound, msgNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, nil, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
