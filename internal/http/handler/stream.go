package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"filevault/internal/auth"
	"filevault/internal/http/middleware"
	"filevault/internal/model"
	"filevault/internal/service"
)

const defaultContentType = "application/octet-stream"

// StreamOpener opens ownership-checked object streams.
type StreamOpener interface {
	OpenDownload(ctx context.Context, p model.Principal, ref model.FileRef) (*service.Session, error)
	OpenStream(ctx context.Context, p model.Principal, ref model.FileRef, rangeHeader string) (*service.Session, error)
}

// refFunc extracts the file reference from the route. ok is false for a
// malformed reference.
type refFunc func(c *fiber.Ctx) (ref model.FileRef, ok bool)

func byKey(c *fiber.Ctx) (model.FileRef, bool) {
	key := c.Params("filekey")
	return model.RefByKey(key), key != ""
}

func byID(c *fiber.Ctx) (model.FileRef, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return model.FileRef{}, false
	}
	return model.RefByID(id), true
}

// SkipServerSpan reports the requests the otelfiber middleware must not wrap:
// /metrics, and the streaming routes, which start their own server span.
// otelfiber reads the whole response body after the handler returns, which
// would drain a streamed object into memory before the first byte is sent.
func SkipServerSpan(c *fiber.Ctx) bool {
	p := c.Path()
	switch {
	case p == "/metrics":
		return true
	case strings.HasPrefix(p, "/download/"), strings.HasPrefix(p, "/stream/"):
		return true
	case strings.HasPrefix(p, "/files/"):
		return strings.HasSuffix(p, "/download") || strings.HasSuffix(p, "/stream")
	}
	return false
}

// headerCarrier adapts the fasthttp request headers for trace propagation.
type headerCarrier struct{ c *fiber.Ctx }

func (h headerCarrier) Get(key string) string { return h.c.Get(key) }

func (h headerCarrier) Set(key, value string) { h.c.Request().Header.Set(key, value) }

func (h headerCarrier) Keys() []string {
	var keys []string
	h.c.Request().Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// startServerSpan opens the server span of a streaming request. Its context is
// detached from the handler's cancellation because fasthttp pulls the body
// after the handler has returned.
func startServerSpan(c *fiber.Ctx) (context.Context, trace.Span) {
	ctx := context.WithoutCancel(c.UserContext())
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier{c})

	route := c.Route().Path
	ctx, span := otel.Tracer("filevault/http").Start(ctx, c.Method()+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
		),
	)
	if rid, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		span.SetAttributes(attribute.String("http.request_id", rid))
	}
	return ctx, span
}

// endOpenFailure closes the span of a request answered with an error body.
func endOpenFailure(c *fiber.Ctx, span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.Int("http.response.status_code", c.Response().StatusCode()))
	if c.Response().StatusCode() >= fiber.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// relayBody is the body handed to fasthttp. Closing it closes the session and
// ends the server span with what was actually relayed.
type relayBody struct {
	*service.Session
	span   trace.Span
	status int
}

func (b *relayBody) Close() error {
	err := b.Session.Close()
	b.span.SetAttributes(
		attribute.Int("http.response.status_code", b.status),
		attribute.Int64("http.response.body.size", b.BytesSent()),
	)
	if rerr := b.Err(); rerr != nil {
		b.span.RecordError(rerr)
		b.span.SetStatus(codes.Error, "relay truncated")
	}
	b.span.End()
	return err
}

// DownloadFile relays the whole object with 200.
//
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param filekey path string true "Object key"
// @Success 200 {file} binary
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Failure 504 {object} errorPayload
// @Router /download/{filekey} [get]
func DownloadFile(svc StreamOpener, ref refFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c.UserContext())
		if !ok {
			return auth.ErrMissingToken
		}
		r, ok := ref(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid file reference")
		}

		ctx, span := startServerSpan(c)
		sess, err := svc.OpenDownload(ctx, p, r)
		if err != nil {
			werr := writeOpenError(c, err, "DOWNLOAD_ERROR", "Error downloading the file.")
			endOpenFailure(c, span, err)
			return werr
		}
		return sendSession(c, sess, span)
	}
}

// StreamFile relays the object honoring the Range header: 206 for a range, 200 otherwise.
//
// @Summary Stream a file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param filekey path string true "Object key"
// @Param Range header string false "Byte range, e.g. bytes=500-"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 416 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Failure 504 {object} errorPayload
// @Router /stream/{filekey} [get]
func StreamFile(svc StreamOpener, ref refFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c.UserContext())
		if !ok {
			return auth.ErrMissingToken
		}
		r, ok := ref(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid file reference")
		}

		ctx, span := startServerSpan(c)
		sess, err := svc.OpenStream(ctx, p, r, c.Get(fiber.HeaderRange))
		if err != nil {
			werr := writeOpenError(c, err, "STREAM_ERROR", "Error streaming the file.")
			endOpenFailure(c, span, err)
			return werr
		}
		return sendSession(c, sess, span)
	}
}

// sendSession writes status and headers once, then hands the session to
// fasthttp, which pulls from it as the connection drains and closes it when the
// response ends. An upstream failure after this point cuts the connection.
func sendSession(c *fiber.Ctx, sess *service.Session, span trace.Span) error {
	ct := sess.File.MimeType
	if ct == "" {
		ct = defaultContentType
	}
	c.Set(fiber.HeaderContentType, ct)

	if sess.Partial() {
		c.Status(fiber.StatusPartialContent)
		c.Set(fiber.HeaderContentRange, sess.Range.ContentRange())
		c.Set(fiber.HeaderAcceptRanges, "bytes")
	} else {
		c.Status(fiber.StatusOK)
	}
	return c.SendStream(&relayBody{Session: sess, span: span, status: c.Response().StatusCode()}, int(sess.Size))
}
