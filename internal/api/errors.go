package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
	"github.com/anamarijapotokar/Baccarat/internal/strategy"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records the underlying error message
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	ee := EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(eb.context) > 0 {
		ee.Context = eb.context
	}
	return ee
}

// classify maps package sentinel errors onto an error type and HTTP status.
func classify(err error) (string, int) {
	var ee EngineError
	switch {
	case errors.As(err, &ee):
		return ee.Type, http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeNotFound, http.StatusNotFound
	case errors.Is(err, strategy.ErrUnknownStrategy):
		return ErrTypeUnknownStrategy, http.StatusBadRequest
	case errors.Is(err, strategy.ErrScript):
		return ErrTypeScript, http.StatusUnprocessableEntity
	case errors.Is(err, strategy.ErrInvalidStake), errors.Is(err, games.ErrInvalidStake):
		return ErrTypeInvalidStake, http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTypeTimeout, http.StatusRequestTimeout
	case isValidation(err):
		return ErrTypeValidation, http.StatusBadRequest
	case errors.Is(err, games.ErrEmptyShoe):
		return ErrTypeSimulation, http.StatusInternalServerError
	default:
		return ErrTypeInternal, http.StatusInternalServerError
	}
}

var validationErrors = []error{
	games.ErrInvalidBetType,
	games.ErrInvalidOutcome,
	games.ErrInvalidRank,
	games.ErrInvalidDeckCount,
	games.ErrThresholdTooLow,
	games.ErrThresholdTooHigh,
	games.ErrInvalidFloor,
	games.ErrInvalidCommission,
	sim.ErrInvalidConfig,
	sim.ErrDegenerateSignalRange,
	strategy.ErrInvalidConfig,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError classifies err and writes the matching status and EngineError.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())

	var engineErr EngineError
	if !errors.As(err, &engineErr) {
		errType, _ := classify(err)
		engineErr = NewError(errType, err.Error()).
			WithRequestID(requestID).
			WithContext("path", r.URL.Path).
			WithContext("method", r.Method).
			Build()
	}
	if engineErr.RequestID == "" {
		engineErr.RequestID = requestID
	}
	_, status := classify(err)

	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// HandleUnavailable reports a missing optional dependency such as the database.
func (eh *ErrorHandler) HandleUnavailable(w http.ResponseWriter, r *http.Request, dependency string) {
	engineErr := NewError(ErrTypeServiceUnavailable, fmt.Sprintf("%s is not configured", dependency)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		Build()

	eh.logError(r, engineErr, http.StatusServiceUnavailable)
	eh.writeErrorResponse(w, http.StatusServiceUnavailable, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	logLevel := "ERROR"
	if category == CategoryValidation {
		logLevel = "WARN"
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s method=%s path=%s message=%q context=%+v",
		logLevel, engineErr.Type, category, status, engineErr.RequestID, r.Method, r.URL.Path, engineErr.Message, engineErr.Context,
	)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Printf("error_encode_failed type=%s err=%v", engineErr.Type, err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())

				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
