package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"bankdesk/internal/api"
	"bankdesk/internal/customer"
	"bankdesk/internal/errors"
	"bankdesk/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var gatewayErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bankdesk_gateway_errors_total",
		Help: "Gateway error responses by code, route, and status",
	},
	[]string{"code", "route", "status"},
)

// HTTPErrorHandler is the centralized echo error handler. It translates
// controller sentinels, backend errors, and echo's own errors into the
// gateway's error response shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	code, message := classify(err)
	response := errors.NewErrorResponse(code, traceID, errors.WithMessage(message))
	status := errors.GetHTTPStatus(code)

	logLevel := slog.LevelWarn
	if status >= 500 {
		logLevel = slog.LevelError
	}
	slog.Log(c.Request().Context(), logLevel, "Gateway error",
		"trace_id", traceID,
		"error_code", code,
		"status", status,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)

	gatewayErrorsTotal.WithLabelValues(
		string(code),
		c.Path(),
		fmt.Sprintf("%d", status),
	).Inc()

	if sendErr := c.JSON(status, response); sendErr != nil {
		slog.Error("Failed to send error response",
			"trace_id", traceID,
			"error", sendErr.Error(),
		)
	}
}

// classify maps an error to its gateway error code and display message.
func classify(err error) (errors.ErrorCode, string) {
	switch {
	case stderrors.Is(err, session.ErrInvalidCredentials):
		return errors.AuthInvalidCredentials, err.Error()
	case stderrors.Is(err, session.ErrServerUnavailable):
		return errors.SystemRemoteUnavailable, err.Error()
	case stderrors.Is(err, session.ErrRegistrationConflict):
		return errors.AuthRegistrationFailed, err.Error()
	case stderrors.Is(err, session.ErrInvalidRegistration):
		return errors.AuthRegistrationFailed, err.Error()

	case stderrors.Is(err, customer.ErrInvalidCustomerID):
		return errors.CustomerInvalidID, err.Error()
	case stderrors.Is(err, customer.ErrNoSelection):
		return errors.CustomerNoSelection, err.Error()
	case stderrors.Is(err, customer.ErrCustomerNotFound):
		return errors.CustomerNotFound, err.Error()
	case stderrors.Is(err, customer.ErrEmptyFilter):
		return errors.ValidationInvalidFilter, err.Error()
	case stderrors.Is(err, customer.ErrInvalidForm):
		return errors.ValidationGeneral, err.Error()
	case stderrors.Is(err, customer.ErrInvalidAmount):
		return errors.ValidationInvalidAmount, err.Error()
	case stderrors.Is(err, customer.ErrInsufficientFunds):
		return errors.AccountInsufficientFunds, err.Error()

	case api.IsUnauthorized(err):
		return errors.AuthRejectedByServer, err.Error()
	case api.IsUnavailable(err):
		return errors.SystemRemoteUnavailable, err.Error()
	}

	if httpErr := api.AsHTTPError(err); httpErr != nil {
		switch httpErr.Status {
		case http.StatusNotFound:
			return errors.CustomerNotFound, err.Error()
		case http.StatusConflict:
			return errors.CustomerConflict, err.Error()
		case http.StatusUnprocessableEntity:
			return errors.SystemRequestRejected, err.Error()
		}
		return errors.SystemInternalError, err.Error()
	}

	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		return codeForStatus(echoErr.Code), fmt.Sprintf("%v", echoErr.Message)
	}

	return errors.SystemInternalError, err.Error()
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ValidationGeneral
	case http.StatusUnauthorized:
		return errors.AuthMissingSession
	case http.StatusNotFound:
		return errors.CustomerNotFound
	case http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return errors.ValidationGeneral
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusServiceUnavailable:
		return errors.SystemRemoteUnavailable
	default:
		return errors.SystemInternalError
	}
}
