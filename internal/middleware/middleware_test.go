package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bankdesk/internal/api"
	"bankdesk/internal/customer"
	"bankdesk/internal/errors"
	"bankdesk/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, mw(handler)(c)
}

func TestTraceID_GeneratesWhenAbsent(t *testing.T) {
	rec, err := runMiddleware(t, TraceID(), func(c echo.Context) error {
		assert.NotEmpty(t, GetTraceID(c))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get(TraceIDHeader))
}

func TestTraceID_HonorsCallerSupplied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set(TraceIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := TraceID()(func(c echo.Context) error {
		assert.Equal(t, "trace-123", GetTraceID(c))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, "trace-123", rec.Header().Get(TraceIDHeader))
}

func TestPanicRecovery_ReturnsInternalError(t *testing.T) {
	rec, err := runMiddleware(t, PanicRecovery(), func(c echo.Context) error {
		panic("boom")
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var response errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, string(errors.SystemInternalError), response.Error.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec, err := runMiddleware(t, SecurityHeaders(), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, err)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/state", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/state", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorCode
	}{
		{"invalid credentials", session.ErrInvalidCredentials, errors.AuthInvalidCredentials},
		{"server unavailable", session.ErrServerUnavailable, errors.SystemRemoteUnavailable},
		{"no selection", customer.ErrNoSelection, errors.CustomerNoSelection},
		{"not found", customer.ErrCustomerNotFound, errors.CustomerNotFound},
		{"empty filter", customer.ErrEmptyFilter, errors.ValidationInvalidFilter},
		{"insufficient funds", customer.ErrInsufficientFunds, errors.AccountInsufficientFunds},
		{"wrapped not found", fmt.Errorf("context: %w", customer.ErrCustomerNotFound), errors.CustomerNotFound},
		{"backend 401", &api.HTTPError{Status: 401}, errors.AuthRejectedByServer},
		{"backend 409", &api.HTTPError{Status: 409}, errors.CustomerConflict},
		{"transport failure", api.ErrUnavailable, errors.SystemRemoteUnavailable},
		{"echo 404", echo.NewHTTPError(http.StatusNotFound, "not found"), errors.CustomerNotFound},
		{"unknown", fmt.Errorf("mystery"), errors.SystemInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := classify(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestHTTPErrorHandler_WritesErrorResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-456")

	HTTPErrorHandler(customer.ErrNoSelection, c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var response errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, string(errors.CustomerNoSelection), response.Error.Code)
	assert.Equal(t, "trace-456", response.Error.TraceID)
}
