package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"filevault/internal/auth"
	"filevault/internal/http/middleware"
	"filevault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "FORBIDDEN", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeInternal logs err with the request logger and answers with a fixed 500 body.
func writeInternal(c *fiber.Ctx, err error, code, message string) error {
	zerolog.Ctx(c.UserContext()).Error().Err(err).Str("code", code).Msg(message)
	return writeError(c, fiber.StatusInternalServerError, code, message)
}

// writeOpenError maps a failed stream open to its status. Only called before any
// body byte is written.
func writeOpenError(c *fiber.Ctx, err error, code, message string) error {
	var rangeErr *service.RangeError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "File not found.")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "You do not have permission to download this file.")
	case errors.Is(err, service.ErrObjectNotFound):
		return writeError(c, fiber.StatusNotFound, "OBJECT_NOT_FOUND", "File content not found.")
	case errors.As(err, &rangeErr):
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", rangeErr.Total))
		return writeError(c, fiber.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE", "Requested range not satisfiable.")
	case errors.Is(err, service.ErrTimeout):
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "Timed out opening the file.")
	default:
		// The stream service already logged the cause.
		return writeError(c, fiber.StatusInternalServerError, code, message)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			return writeError(c, fiber.StatusUnauthorized, authErr.Code, authErr.Message)
		}

		status := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("unhandled error")
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
