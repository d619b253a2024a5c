package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/insight-sphere/internal/types"
)

// FetchKind distinguishes how a fetch failed
type FetchKind string

const (
	// KindTransport covers unreachable network, non-2xx status and undecodable bodies
	KindTransport FetchKind = "transport"
	// KindAPI means the envelope arrived but reported success:false
	KindAPI FetchKind = "api"
)

// FetchError is the single failure type returned by the fetch gateway
type FetchError struct {
	Resource types.Resource
	Kind     FetchKind
	Message  string
	Cause    error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s (%s): %s: %v", e.Resource, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s (%s): %s", e.Resource, e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DefaultFetchMessage is used when the server gives no message of its own
func DefaultFetchMessage(resource types.Resource) string {
	switch resource {
	case types.ResourceGlobal:
		return "failed to fetch global market data"
	case types.ResourceTopAssets:
		return "failed to fetch top cryptocurrency data"
	default:
		return fmt.Sprintf("failed to fetch %s", resource)
	}
}

// NewTransportError wraps a transport-level failure for resource
func NewTransportError(resource types.Resource, cause error) *FetchError {
	return &FetchError{
		Resource: resource,
		Kind:     KindTransport,
		Message:  DefaultFetchMessage(resource),
		Cause:    cause,
	}
}

// NewAPIError builds the error for an envelope with success:false
func NewAPIError(resource types.Resource, message string) *FetchError {
	if message == "" {
		message = DefaultFetchMessage(resource)
	}
	return &FetchError{
		Resource: resource,
		Kind:     KindAPI,
		Message:  message,
	}
}

// AsFetchError unwraps err into a FetchError when it is one
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ErrorCategory represents the category of a server-side error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryProvider represents upstream market data errors
	CategoryProvider ErrorCategory = "provider"
	// CategoryCache represents cache errors
	CategoryCache ErrorCategory = "cache"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(path string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("no such endpoint: %s", path),
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError() *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "rate limit exceeded, please try again later",
	}
}

// NewProviderError creates an upstream market data error
func NewProviderError(provider string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusBadGateway,
		Code:       "PROVIDER_ERROR",
		Message:    fmt.Sprintf("upstream request to %s failed", provider),
		Cause:      cause,
	}
}

// NewProviderTimeoutError creates an upstream timeout error
func NewProviderTimeoutError(provider string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusGatewayTimeout,
		Code:       "PROVIDER_TIMEOUT",
		Message:    fmt.Sprintf("upstream request to %s timed out", provider),
		Cause:      cause,
	}
}

// NewCacheError creates a cache error
func NewCacheError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCache,
		StatusCode: http.StatusInternalServerError,
		Code:       "CACHE_ERROR",
		Message:    fmt.Sprintf("cache error during %s", operation),
		Cause:      cause,
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewProviderTimeoutError("upstream", err)
	}

	return NewInternalError("unexpected error", err)
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsRetryable determines if an error is worth another attempt
func IsRetryable(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	switch catErr.Category {
	case CategoryProvider, CategoryCache:
		return true
	case CategorySystem:
		return catErr.StatusCode == http.StatusServiceUnavailable ||
			catErr.StatusCode == http.StatusGatewayTimeout
	default:
		return false
	}
}
