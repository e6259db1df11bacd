package dto

import (
	"net/http"

	"github.com/buildcrm/backend/internal/domain/shared"
)

// Transport-level error codes
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Business-rule rejections map to 422 so clients can distinguish them
// from malformed requests.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,

	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"CONTRACT_EXISTS":      http.StatusConflict,
	"ALREADY_INVOICED":     http.StatusConflict,

	"INVALID_INPUT": http.StatusBadRequest,
	"INVALID_HOURS": http.StatusBadRequest,

	shared.CodeMissingInput:             http.StatusBadRequest,
	shared.CodeInvalidPlanConfiguration: http.StatusBadRequest,

	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"CONTRACT_NOT_SIGNED": http.StatusUnprocessableEntity,
	"SIGNATURE_MISSING":   http.StatusUnprocessableEntity,
	"HAS_PAYMENTS":        http.StatusUnprocessableEntity,
	"HAS_PAYOUTS":         http.StatusUnprocessableEntity,
	"PLAN_INACTIVE":       http.StatusUnprocessableEntity,

	shared.CodeOverpayment:      http.StatusUnprocessableEntity,
	shared.CodeIneligibleSource: http.StatusUnprocessableEntity,

	shared.CodeConsistencyError: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
