package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders adds defensive headers to gateway responses. The gateway
// binds to localhost, but the payloads it relays carry customer PII and must
// never be cached or framed.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'self'")
			h.Set("Referrer-Policy", "no-referrer")

			// Customer data must not be cached on the operator's machine.
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			h.Set("Pragma", "no-cache")

			return next(c)
		}
	}
}
