package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID tags every request with an id and binds it to the request scope.
//
// An incoming X-Request-ID is reused when it is short printable ASCII,
// otherwise a UUID is generated. The id is echoed in the response header,
// stored in locals under RequestIDLocalKey, set on the active span and attached
// to a child of base that handlers and the stream service reach through
// zerolog.Ctx(c.UserContext()).
func RequestID(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		ctx := c.UserContext()
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("http.request_id", id))

		reqLog := base.With().Str("request_id", id).Logger()
		c.SetUserContext(reqLog.WithContext(ctx))

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
