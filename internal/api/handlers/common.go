// Package handlers provides HTTP request handlers for the netsentinel API.
// This file contains the helpers shared by every handler group.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/anstrom/netsentinel/internal/api/middleware"
	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
	maxRequestSize   = 1 << 20
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// StatusResponse is the {status, message} acknowledgement used by action
// endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// statusFromError maps an error code to an HTTP status.
func statusFromError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeAlreadyRunning, errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeValidation, errors.CodeTargetInvalid:
		return http.StatusBadRequest
	case errors.CodeEnrichmentTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case errors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// getLimit parses ?limit=N, falling back to def and capping at maxListLimit.
func getLimit(r *http.Request, def int) (int, error) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit parameter: %q", value)
	}
	return min(limit, maxListLimit), nil
}

func getQueryParamBool(r *http.Request, key string) bool {
	parsed, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && parsed
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("Failed to encode JSON response",
			"request_id", middleware.GetRequestID(r),
			"error", err)
	}
}

// writeError writes an error response with the message of err.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	writeMessage(w, r, statusCode, err.Error(), errors.GetCode(err))
}

func writeMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string, code errors.ErrorCode) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r),
	}
	if code != errors.CodeUnknown {
		response.Code = string(code)
	}
	writeJSON(w, r, statusCode, response)
}

// handleError maps err to a status and writes it. Server-side failures are
// logged and answered with a generic message so internal details stay out
// of responses.
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string, logger *logging.Logger) {
	status := statusFromError(err)
	if status < http.StatusInternalServerError {
		writeError(w, r, status, err)
		return
	}

	logger.Error(fmt.Sprintf("Failed to %s", operation),
		"request_id", middleware.GetRequestID(r),
		"error", err)
	writeMessage(w, r, status, fmt.Sprintf("failed to %s", operation), errors.GetCode(err))
}

// parseJSON decodes the request body into dest and validates it. An empty
// body is accepted when optional is set and leaves dest untouched. Every
// returned error is a client error.
func parseJSON(r *http.Request, dest interface{}, optional bool) error {
	if r.Body == nil {
		if optional {
			return validateStruct(dest)
		}
		return fmt.Errorf("request body is empty")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if stderrors.Is(err, io.EOF) && optional {
			return validateStruct(dest)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return validateStruct(dest)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	return stderrors.New(strings.Join(msgs, "; "))
}
