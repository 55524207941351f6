package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeCacheError         ErrorCode = "COMMON_008"
	ErrCodeUnknown            ErrorCode = "COMMON_999"
)

// Input error codes. An invalid input is surfaced to the caller as a rejected
// request; it is never coerced into a computed verdict.
const (
	ErrCodeInvalidInput        ErrorCode = "INPUT_001"
	ErrCodeUnsupportedArtifact ErrorCode = "INPUT_002"
)

// Static scoring (Stage 1) error codes.
const (
	ErrCodeFeatureExtraction ErrorCode = "FEAT_001"
	ErrCodeFeatureVector     ErrorCode = "FEAT_002"
)

// Model artifact error codes. Model load failures are fatal at startup; the
// process must not serve requests with a partially loaded model.
const (
	ErrCodeModelLoad       ErrorCode = "MODEL_001"
	ErrCodeModelArtifact   ErrorCode = "MODEL_002"
	ErrCodeModelIncomplete ErrorCode = "MODEL_003"
)

// Dynamic probe (Stage 2) error codes. All of these are recovered locally:
// the merge step falls back to Stage 1 alone.
const (
	ErrCodeProbeTimeout     ErrorCode = "PROBE_001"
	ErrCodeProbeUnreachable ErrorCode = "PROBE_002"
	ErrCodeProbeRender      ErrorCode = "PROBE_003"
	ErrCodeProbeUnsupported ErrorCode = "PROBE_004"
)

// Event publishing error codes.
const (
	ErrCodePublishFailed ErrorCode = "EVENT_001"
)

// httpStatusByCode maps error codes to HTTP status codes for the API layer.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeSerialization:       http.StatusInternalServerError,
	ErrCodeServiceUnavailable:  http.StatusServiceUnavailable,
	ErrCodeCacheError:          http.StatusInternalServerError,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeUnsupportedArtifact: http.StatusUnprocessableEntity,
}

// HTTPStatus returns the HTTP status code appropriate for the error code.
// Unmapped codes resolve to 500.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
