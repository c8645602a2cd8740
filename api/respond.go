package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Skryldev/jobly-api/logging"
	"github.com/Skryldev/jobly-api/repo"
	"github.com/Skryldev/jobly-api/sqlbuild"
	"github.com/Skryldev/jobly-api/validation"
)

// APIError is the body of every error response, wrapped as {"error": ...}.
type APIError struct {
	Status    int      `json:"status"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

const (
	codeBadRequest   = "bad_request"
	codeValidation   = "validation_failed"
	codeNotFound     = "not_found"
	codeConflict     = "already_exists"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeRateLimited  = "rate_limited"
	codeMethod       = "method_not_allowed"
	codeInternal     = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("api: marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("api: write response")
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, e APIError) {
	e.RequestID = logging.RequestIDFromContext(r.Context())
	writeJSON(w, e.Status, errorEnvelope{Error: e})
}

// writeStatus renders a plain error for a status and message. It also
// serves as the auth.ErrorWriter.
func writeStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	code := codeBadRequest
	switch status {
	case http.StatusUnauthorized:
		code = codeUnauthorized
	case http.StatusForbidden:
		code = codeForbidden
	case http.StatusNotFound:
		code = codeNotFound
	case http.StatusMethodNotAllowed:
		code = codeMethod
	case http.StatusTooManyRequests:
		code = codeRateLimited
	case http.StatusInternalServerError:
		code = codeInternal
	}
	writeAPIError(w, r, APIError{Status: status, Code: code, Message: msg})
}

// writeError maps an error kind onto a status code. Storage faults are
// logged with their cause and reported without it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr *validation.RequestValidationError
		valErr *sqlbuild.ValidationError
	)

	switch {
	case errors.As(err, &reqErr):
		writeAPIError(w, r, APIError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "request validation failed",
			Details: reqErr.Messages(),
		})
	case errors.As(err, &valErr):
		writeAPIError(w, r, APIError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: valErr.Error(),
		})
	case repo.IsNotFound(err):
		writeAPIError(w, r, APIError{Status: http.StatusNotFound, Code: codeNotFound, Message: clientMessage(err)})
	case repo.IsAlreadyExists(err):
		writeAPIError(w, r, APIError{Status: http.StatusConflict, Code: codeConflict, Message: clientMessage(err)})
	case errors.Is(err, errBadRequest):
		writeAPIError(w, r, APIError{Status: http.StatusBadRequest, Code: codeBadRequest, Message: err.Error()})
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("api: request failed")
		writeAPIError(w, r, APIError{Status: http.StatusInternalServerError, Code: codeInternal, Message: "internal server error"})
	}
}

func clientMessage(err error) string {
	var target *repo.Error
	if errors.As(err, &target) {
		return target.Message()
	}
	return err.Error()
}
