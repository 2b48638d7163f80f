package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used when removal would orphan consumed ledger entries
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeLockTimeout is used when a write lock could not be obtained in time
	ErrCodeLockTimeout = "ERR_LOCK_TIMEOUT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when an allocation exceeds remaining stock
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeCommitmentExceeded is used when an inward line exceeds its order commitment
	ErrCodeCommitmentExceeded = "ERR_COMMITMENT_EXCEEDED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLockTimeout:         http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeCommitmentExceeded: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to standardized API codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ENTRY_NOT_FOUND":          ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"DUPLICATE_SKU":            ErrCodeAlreadyExists,
	"DUPLICATE_WAREHOUSE_CODE": ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_QUANTITY":         ErrCodeInvalidInput,
	"INVALID_SKU":              ErrCodeInvalidInput,
	"INVALID_PRODUCT":          ErrCodeInvalidInput,
	"INVALID_PRODUCT_NAME":     ErrCodeInvalidInput,
	"INVALID_ORDER":            ErrCodeInvalidInput,
	"INVALID_ORDER_NUMBER":     ErrCodeInvalidInput,
	"INVALID_WAREHOUSE_CODE":   ErrCodeInvalidInput,
	"INVALID_WAREHOUSE_NAME":   ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":       ErrCodeInsufficientStock,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
