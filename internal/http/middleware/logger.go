package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"filevault/internal/auth"
)

// Logger is a middleware that logs each HTTP request as one JSON line.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
// - user_id when the request was authenticated
//
// Errors returned by the chain are passed to the app's ErrorHandler first so the
// logged status is the one the client receives. For streamed bodies the line is
// written once headers are ready; the stream service logs the body outcome.
func Logger(l zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		ev := l.Info().
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Float64("latency", float64(time.Since(start).Microseconds())/1000)
		if p, ok := auth.PrincipalFrom(c.UserContext()); ok {
			ev = ev.Int64("user_id", p.ID)
		}
		ev.Send()

		return nil
	}
}
