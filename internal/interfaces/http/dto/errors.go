package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain error codes pass through as-is;
// these cover failures raised by the HTTP layer itself.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// domainCodeStatus maps domain error codes that don't follow the
// naming conventions below to HTTP statuses.
var domainCodeStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeInternal:   http.StatusInternalServerError,

	"OPTIMISTIC_LOCK_FAILED": http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"ALREADY_EXISTS":         http.StatusConflict,
	"UNAUTHORIZED":           http.StatusUnauthorized,
	"FORBIDDEN":              http.StatusForbidden,

	// state guards and business rules -> 422
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"ALREADY_CANCELLED":         http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":        http.StatusUnprocessableEntity,
	"PATIENT_INACTIVE":          http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":          http.StatusUnprocessableEntity,
	"EPISODE_MISMATCH":          http.StatusUnprocessableEntity,
	"SAME_CENTER":               http.StatusUnprocessableEntity,
	"EMPTY_SALE":                http.StatusBadRequest,
	"EMPTY_TRANSFER":            http.StatusBadRequest,
}

// GetHTTPStatus maps a domain error code to an HTTP status. Codes are
// conventional: *_NOT_FOUND is a 404, DUPLICATE_* a 409, INVALID_* a
// 400 validation failure. Anything unknown is treated as an
// unprocessable business rule rather than a server fault.
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
