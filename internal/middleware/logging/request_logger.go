package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/security"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes a single "request completed" line once the handler returns.
// Handler errors are rendered here, so later middleware sees nil.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			l := base.With(requestAttrs(c)...)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", res.Size,
			}
			if p, ok := security.PrincipalFrom(c); ok {
				attrs = append(attrs, "user", p.Username)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			l.Log(c.Request().Context(), levelFor(res.Status), "request completed", attrs...)
			return nil
		}
	}
}

func requestAttrs(c echo.Context) []any {
	req := c.Request()
	attrs := []any{
		"method", req.Method,
		"path", c.Path(),
		"url", req.URL.Path,
		"remote_ip", c.RealIP(),
		"user_agent", req.UserAgent(),
	}

	// RequestID middleware sets the response header; fall back to the
	// caller's header when it is not installed.
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	if rid == "" {
		rid = req.Header.Get(echo.HeaderXRequestID)
	}
	if rid != "" {
		c.Response().Header().Set(echo.HeaderXRequestID, rid)
		attrs = append(attrs, "request_id", rid)
	}
	return attrs
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
