// Package errors provides error codes for redisqueue
package errors

import "net/http"

// ErrorCode represents a redisqueue error code
type ErrorCode string

const (
	// ErrInvalidArgument indicates a caller-supplied value was rejected before
	// reaching the store: blank message, unknown queue name, type or category,
	// non-positive TTL.
	ErrInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrStoreFailure indicates the Redis store could not be reached or
	// rejected the command.
	ErrStoreFailure ErrorCode = "STORE_FAILURE"

	// ErrLockHeld indicates a lock could not be acquired because another
	// holder owns it.
	ErrLockHeld ErrorCode = "LOCK_HELD"

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrProcessingFailed indicates a processor returned an error or panicked
	ErrProcessingFailed ErrorCode = "PROCESSING_FAILED"

	// ErrCanceled indicates the caller's context was cancelled or timed out
	// while an operation was waiting.
	ErrCanceled ErrorCode = "CANCELED"
)

// StatusClientClosedRequest is reported for cancelled operations.
const StatusClientClosedRequest = 499

// ErrorCodeInfo provides information about an error code
type ErrorCodeInfo struct {
	Code        ErrorCode `json:"code"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	HTTPStatus  int       `json:"http_status"`
}

var errorCodeInfoMap = map[ErrorCode]ErrorCodeInfo{
	ErrInvalidArgument: {
		Code:        ErrInvalidArgument,
		Category:    "argument",
		Description: "Invalid argument",
		HTTPStatus:  http.StatusBadRequest,
	},
	ErrStoreFailure: {
		Code:        ErrStoreFailure,
		Category:    "store",
		Description: "Store unavailable or command rejected",
		HTTPStatus:  http.StatusInternalServerError,
	},
	ErrLockHeld: {
		Code:        ErrLockHeld,
		Category:    "lock",
		Description: "Lock is held by another owner",
		HTTPStatus:  http.StatusConflict,
	},
	ErrInvalidConfig: {
		Code:        ErrInvalidConfig,
		Category:    "configuration",
		Description: "Invalid configuration",
		HTTPStatus:  http.StatusInternalServerError,
	},
	ErrProcessingFailed: {
		Code:        ErrProcessingFailed,
		Category:    "processing",
		Description: "Message processing failed",
		HTTPStatus:  http.StatusInternalServerError,
	},
	ErrCanceled: {
		Code:        ErrCanceled,
		Category:    "context",
		Description: "Operation cancelled by the caller",
		HTTPStatus:  StatusClientClosedRequest,
	},
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code ErrorCode) ErrorCodeInfo {
	info, exists := errorCodeInfoMap[code]
	if !exists {
		return ErrorCodeInfo{
			Code:        code,
			Category:    "unknown",
			Description: "Unknown error code",
			HTTPStatus:  http.StatusInternalServerError,
		}
	}
	return info
}

// GetCategory returns the category of an error code
func GetCategory(code ErrorCode) string {
	return GetErrorCodeInfo(code).Category
}

// HTTPStatus returns the HTTP status an error code maps to
func HTTPStatus(code ErrorCode) int {
	return GetErrorCodeInfo(code).HTTPStatus
}
