package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kraft-solutions/kraftchat/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Success: true, Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Success: false, Code: code, Message: message})
}

// DomainErrorToHTTP maps domain error codes to HTTP status codes
func DomainErrorToHTTP(code string) int {
	switch code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrCodeStorage, domain.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error
// type. Rate-limit errors additionally carry a Retry-After header with
// the remaining window seconds.
func HandleError(w http.ResponseWriter, err error) {
	var rateErr *domain.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		Error(w, http.StatusTooManyRequests, domain.ErrCodeRateLimited, err.Error())
		return
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		Error(w, DomainErrorToHTTP(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	Error(w, http.StatusInternalServerError, domain.ErrCodeInternal, err.Error())
}
