package guard

import (
	"net/http"

	"bankdesk/internal/errors"
	"bankdesk/internal/middleware"

	"github.com/labstack/echo/v4"
)

// SessionChecker reports whether an operator session is active. Satisfied by
// the session controller. The check is purely local; no network calls.
type SessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession gates protected gateway routes. Requests without an active
// session get a 401 with an AUTH_002 body and never reach the handler.
func RequireSession(sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessions.IsAuthenticated() {
				traceID := middleware.GetTraceID(c)
				response := errors.NewErrorResponse(errors.AuthMissingSession, traceID)
				return c.JSON(http.StatusUnauthorized, response)
			}
			return next(c)
		}
	}
}
