package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/payment"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusByCode maps domain error codes to transport status.
var statusByCode = map[string]int{
	booking.CodeDateUnavailable:    http.StatusUnprocessableEntity,
	booking.CodeSlotUnavailable:    http.StatusConflict,
	booking.CodeTermsNotAccepted:   http.StatusUnprocessableEntity,
	booking.CodeValidation:         http.StatusBadRequest,
	booking.CodePersistenceFailure: http.StatusServiceUnavailable,
	booking.CodeNotFound:           http.StatusNotFound,
	booking.CodeInvalidTransition:  http.StatusConflict,
	booking.CodeHoldConflict:       http.StatusConflict,
	booking.CodeHoldsDisabled:      http.StatusNotFound,
	payment.CodeInvalidSignature:   http.StatusBadRequest,
	payment.CodeNotConfigured:      http.StatusServiceUnavailable,
	"invalid_input":                http.StatusBadRequest,
	"invalid_credentials":          http.StatusUnauthorized,
	"invalid_token":                http.StatusUnauthorized,
	"user_not_found":               http.StatusNotFound,
}

// fromAppError converts a service error into its HTTP representation.
func fromAppError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		return &HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "something went wrong",
			Err:     err,
		}
	}
	return NewHTTPError(status, code, apperrors.MessageOf(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromAppError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func abortWithAppError(c *gin.Context, err error) {
	abortWithError(c, fromAppError(err))
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
