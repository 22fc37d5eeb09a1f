package middleware

import (
	"time"

	"credit-intelligence/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewRequestLogger stores a request-scoped logger in the request context, so
// services logging with *Context helpers carry the request id, and logs every
// completed request.
func NewRequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			scoped := log.With(
				logger.StringField("request_id", requestID),
				logger.StringField("method", req.Method),
				logger.StringField("route", c.Path()),
			)
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), scoped)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			if status >= 500 {
				scoped.Error("Request failed", logger.IntField("status", status), logger.DurationField("latency", time.Since(start)))
			} else {
				scoped.Info("Request served", logger.IntField("status", status), logger.DurationField("latency", time.Since(start)))
			}
			return nil
		}
	}
}
