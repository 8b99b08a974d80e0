package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Error codes
const (
	CodeBotError    = "BOT_ERROR"
	CodeAPIError    = "API_ERROR"
	CodeValidation  = "VALIDATION_ERROR"
	CodeCache       = "CACHE_ERROR"
	CodeService     = "SERVICE_ERROR"
	CodeKeyRotation = "KEY_ROTATION_ERROR"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeStore       = "STORE_ERROR"
)

// ErrNotFound is returned when a player lookup yields no match.
var ErrNotFound = stderrors.New("not found")

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

type APIError struct {
	*BotError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

type KeyRotationError struct {
	*APIError
}

func NewKeyRotationError(message string, statusCode int, context map[string]any) *KeyRotationError {
	return &KeyRotationError{
		APIError: &APIError{
			BotError: &BotError{
				Message:    message,
				Code:       CodeKeyRotation,
				StatusCode: statusCode,
				Context:    context,
			},
		},
	}
}

// UpstreamKind classifies a failure reported by the game API.
type UpstreamKind string

const (
	UpstreamTransient   UpstreamKind = "transient"
	UpstreamAuth        UpstreamKind = "auth"
	UpstreamRateLimited UpstreamKind = "rate_limited"
	UpstreamNotFound    UpstreamKind = "not_found"
)

func (k UpstreamKind) String() string {
	return string(k)
}

type UpstreamError struct {
	*APIError
	Kind       UpstreamKind
	RetryAfter time.Duration
}

func NewUpstreamError(kind UpstreamKind, message string, statusCode int, context map[string]any) *UpstreamError {
	return &UpstreamError{
		APIError: &APIError{
			BotError: &BotError{
				Message:    message,
				Code:       CodeUpstream,
				StatusCode: statusCode,
				Context:    context,
			},
		},
		Kind: kind,
	}
}

func (e *UpstreamError) WithCause(cause error) *UpstreamError {
	e.Cause = cause
	return e
}

// Unwrap exposes ErrNotFound for not_found failures so callers can use errors.Is.
func (e *UpstreamError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Kind == UpstreamNotFound {
		errs = append(errs, ErrNotFound)
	}
	return errs
}

type StoreError struct {
	*BotError
	Path      string
	Operation string
}

func NewStoreError(message, operation, path string, cause error) *StoreError {
	return &StoreError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeStore,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"path":      path,
			},
			Cause: cause,
		},
		Path:      path,
		Operation: operation,
	}
}

func upstreamKind(err error) (UpstreamKind, bool) {
	var upstream *UpstreamError
	if stderrors.As(err, &upstream) {
		return upstream.Kind, true
	}
	return "", false
}

func IsTransient(err error) bool {
	kind, ok := upstreamKind(err)
	return ok && kind == UpstreamTransient
}

func IsAuth(err error) bool {
	kind, ok := upstreamKind(err)
	return ok && kind == UpstreamAuth
}

func IsRateLimited(err error) bool {
	kind, ok := upstreamKind(err)
	return ok && kind == UpstreamRateLimited
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
