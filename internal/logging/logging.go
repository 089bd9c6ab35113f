// Package logging configures logrus and carries a request-scoped logger
// through context.Context.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// Init sets the global logrus level and formatter. Unknown levels fall back
// to info.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
}

func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Middleware attaches a logger tagged with the request id to the request
// context and writes one line per handled request. It must run after echo's
// RequestID middleware.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			entry := logrus.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     req.Method,
				"path":       req.URL.Path,
			})

			ctx := ToContext(req.Context(), entry)
			ctx = ContextWithRequestID(ctx, requestID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry = entry.WithFields(logrus.Fields{
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			})
			if c.Response().Status >= 500 {
				entry.Warn("request handled")
			} else {
				entry.Info("request handled")
			}
			return nil
		}
	}
}
