package api

import (
	"encoding/json"
	"net/http"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes returned in ErrorInfo.Code.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeInvalidMonth  = "INVALID_MONTH"
	CodeInvalidDay    = "INVALID_DAY"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternal      = "INTERNAL_ERROR"
	CodeReloadFailed  = "RELOAD_FAILED"
	CodeUnhealthy     = "HEALTH_CHECK_FAILED"
	CodeNotConfigured = "NOT_CONFIGURED"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message string, code ...string) error {
	errInfo := ErrorInfo{
		Message: message,
	}
	if len(code) > 0 {
		errInfo.Code = code[0]
	}

	return WriteJSON(w, status, Response{
		Success: false,
		Error:   &errInfo,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, CodeBadRequest)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, CodeInternal)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

// WriteConversionError maps a conversion engine error to a 400 response with
// the matching code. It reports false if err is not a user input error.
func WriteConversionError(w http.ResponseWriter, err error) bool {
	var code string
	switch {
	case lunar.IsOutOfRange(err):
		code = CodeOutOfRange
	case lunar.IsInvalidMonth(err):
		code = CodeInvalidMonth
	case lunar.IsInvalidDay(err):
		code = CodeInvalidDay
	default:
		return false
	}
	WriteError(w, http.StatusBadRequest, err.Error(), code)
	return true
}
