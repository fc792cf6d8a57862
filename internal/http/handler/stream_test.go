package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"filevault/internal/auth"
	"filevault/internal/http/middleware"
	"filevault/internal/model"
	repoMocks "filevault/internal/repository/mocks"
	"filevault/internal/service"
	"filevault/internal/storage"
	storeMocks "filevault/internal/storage/mocks"
)

var noRange = (*model.ByteRange)(nil)

// objectBytes is deterministic content where every offset is distinguishable.
func objectBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

type closeTracker struct {
	io.Reader
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

// failingReader yields its prefix and then fails.
type failingReader struct {
	prefix []byte
	err    error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.prefix) == 0 {
		return 0, f.err
	}
	n := copy(p, f.prefix)
	f.prefix = f.prefix[n:]
	return n, nil
}

type streamFixture struct {
	app   *fiber.App
	authn *auth.Authenticator
	files *repoMocks.MockFileRepository
	store *storeMocks.MockStorage
}

// newStreamFixture wires the streaming routes behind the same middleware chain
// as cmd/api: otelfiber, RequestID, Logger and the Prometheus middleware.
func newStreamFixture(t *testing.T, opts service.StreamOptions) *streamFixture {
	t.Helper()
	authn, err := auth.NewAuthenticator("stream-secret", time.Hour)
	require.NoError(t, err)

	files := new(repoMocks.MockFileRepository)
	store := new(storeMocks.MockStorage)
	if opts.OpenRetries == 0 {
		opts.OpenRetries = 1
	}
	streams := service.NewStreamService(service.NewAccessResolver(files, 0, 0), store, opts, nil, zerolog.Nop())

	prom, err := middleware.NewPrometheusMiddleware(prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(), DisableStartupMessage: true})
	app.Use(otelfiber.Middleware(otelfiber.WithNext(SkipServerSpan)))
	app.Use(middleware.RequestID(zerolog.Nop()))
	app.Use(middleware.Logger(zerolog.Nop()))
	app.Use(prom.Handler())
	RegisterRoutes(app, nil, Services{Streams: streams}, authn)

	return &streamFixture{app: app, authn: authn, files: files, store: store}
}

func (f *streamFixture) request(t *testing.T, path string, userID int64, rangeHeader string) *http.Request {
	t.Helper()
	token, err := f.authn.Issue(&model.User{ID: userID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	return req
}

// serve runs the app on a loopback listener and returns its base URL.
func (f *streamFixture) serve(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = f.app.Listener(ln) }()
	t.Cleanup(func() { _ = f.app.ShutdownWithTimeout(2 * time.Second) })
	return "http://" + ln.Addr().String()
}

// liveRequest is request for a real HTTP client.
func (f *streamFixture) liveRequest(t *testing.T, url string, userID int64, rangeHeader string) *http.Request {
	t.Helper()
	token, err := f.authn.Issue(&model.User{ID: userID})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	return req
}

var song = &model.File{ID: 1, Key: "song.mp3", MimeType: "audio/mpeg", Size: 1000, OwnerID: 1}

func TestDownloadFile(t *testing.T) {
	data := objectBytes(1000)

	t.Run("owner receives the whole object", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		up := &closeTracker{Reader: bytes.NewReader(data)}
		f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
		f.store.On("Get", mock.Anything, "song.mp3", noRange).Return(up, storage.ObjectInfo{Size: 1000}, nil)

		resp, err := f.app.Test(f.request(t, "/download/song.mp3", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
		assert.Equal(t, int64(1000), resp.ContentLength)
		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Eventually(t, up.closed.Load, time.Second, 10*time.Millisecond)
	})

	t.Run("by numeric id", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByID", mock.Anything, int64(1)).Return(song, nil)
		f.store.On("Get", mock.Anything, "song.mp3", noRange).
			Return(io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: 1000}, nil)

		resp, err := f.app.Test(f.request(t, "/files/1/download", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		got, _ := io.ReadAll(resp.Body)
		assert.Equal(t, data, got)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})

		resp, err := f.app.Test(f.request(t, "/files/abc/download", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		f.files.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("default content type", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByKey", mock.Anything, "blob").Return(&model.File{ID: 2, Key: "blob", OwnerID: 1}, nil)
		f.store.On("Get", mock.Anything, "blob", noRange).
			Return(io.NopCloser(bytes.NewReader([]byte("x"))), storage.ObjectInfo{Size: 1}, nil)

		resp, err := f.app.Test(f.request(t, "/download/blob", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	})
}

func TestStreamFile_Ranges(t *testing.T) {
	data := objectBytes(1000)

	tests := []struct {
		name             string
		rangeHeader      string
		wantRange        *model.ByteRange
		wantContentRange string
	}{
		{
			name:             "open ended",
			rangeHeader:      "bytes=500-",
			wantRange:        &model.ByteRange{Start: 500, End: 999, Total: 1000},
			wantContentRange: "bytes 500-999/1000",
		},
		{
			name:             "malformed starts at zero",
			rangeHeader:      "garbage",
			wantRange:        &model.ByteRange{Start: 0, End: 999, Total: 1000},
			wantContentRange: "bytes 0-999/1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStreamFixture(t, service.StreamOptions{})
			f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
			f.store.On("Stat", mock.Anything, "song.mp3").Return(storage.ObjectInfo{Size: 1000}, nil)
			f.store.On("Get", mock.Anything, "song.mp3", tt.wantRange).
				Return(io.NopCloser(bytes.NewReader(data[tt.wantRange.Start:])), storage.ObjectInfo{Size: tt.wantRange.Length()}, nil)

			resp, err := f.app.Test(f.request(t, "/stream/song.mp3", 1, tt.rangeHeader))
			require.NoError(t, err)

			assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
			assert.Equal(t, tt.wantContentRange, resp.Header.Get("Content-Range"))
			assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
			assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantRange.Length(), resp.ContentLength)

			got, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, data[tt.wantRange.Start:], got)
			f.store.AssertExpectations(t)
		})
	}

	t.Run("no range header is a plain 200", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByID", mock.Anything, int64(1)).Return(song, nil)
		f.store.On("Get", mock.Anything, "song.mp3", noRange).
			Return(io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: 1000}, nil)

		resp, err := f.app.Test(f.request(t, "/files/1/stream", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Content-Range"))
		f.store.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
	})

	t.Run("start past the end", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
		f.store.On("Stat", mock.Anything, "song.mp3").Return(storage.ObjectInfo{Size: 1000}, nil)

		resp, err := f.app.Test(f.request(t, "/stream/song.mp3", 1, "bytes=5000-"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, resp.StatusCode)
		assert.Equal(t, "bytes */1000", resp.Header.Get("Content-Range"))
		assert.Equal(t, "RANGE_NOT_SATISFIABLE", decodeError(t, resp).Error.Code)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStreamFile_Access(t *testing.T) {
	t.Run("non-owner is forbidden before the object store is read", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)

		for _, path := range []string{"/stream/song.mp3", "/download/song.mp3"} {
			resp, err := f.app.Test(f.request(t, path, 2, "bytes=0-"))
			require.NoError(t, err)

			assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
			res := decodeError(t, resp)
			assert.Equal(t, "FORBIDDEN", res.Error.Code)
			assert.NotEmpty(t, res.RequestID)
		}
		f.store.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown file is 404 without touching the object store", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByKey", mock.Anything, "nope").Return(nil, sql.ErrNoRows)

		resp, err := f.app.Test(f.request(t, "/stream/nope", 1, "bytes=0-"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		f.store.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing or malformed credentials", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})

		tests := []struct {
			header   string
			wantCode string
		}{
			{header: "", wantCode: "MISSING_TOKEN"},
			{header: "Basic abc", wantCode: "TOKEN_MALFORMATTED"},
			{header: "Bearer", wantCode: "TOKEN_ERROR"},
			{header: "Bearer not-a-jwt", wantCode: "TOKEN_INVALID"},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(http.MethodGet, "/stream/song.mp3", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := f.app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tt.header)
			assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code, tt.header)
		}
		f.files.AssertNotCalled(t, "FindByKey", mock.Anything, mock.Anything)
	})
}

func TestStreamFile_OpenFailures(t *testing.T) {
	t.Run("object missing from the store", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{})
		f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
		f.store.On("Get", mock.Anything, "song.mp3", noRange).Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		resp, err := f.app.Test(f.request(t, "/download/song.mp3", 1, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "OBJECT_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("backend error before the first byte", func(t *testing.T) {
		for _, tt := range []struct{ path, code string }{
			{"/download/song.mp3", "DOWNLOAD_ERROR"},
			{"/stream/song.mp3", "STREAM_ERROR"},
		} {
			f := newStreamFixture(t, service.StreamOptions{})
			f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
			f.store.On("Get", mock.Anything, "song.mp3", noRange).
				Return(nil, storage.ObjectInfo{}, errors.New("connection reset"))

			resp, err := f.app.Test(f.request(t, tt.path, 1, ""))
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, tt.path)
			res := decodeError(t, resp)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.NotContains(t, res.Error.Message, "connection reset")
		}
	})

	t.Run("stat request exceeds the open timeout", func(t *testing.T) {
		f := newStreamFixture(t, service.StreamOptions{OpenTimeout: 50 * time.Millisecond})
		f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
		f.store.On("Stat", mock.Anything, "song.mp3").
			Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
			Return(storage.ObjectInfo{}, context.DeadlineExceeded)

		resp, err := f.app.Test(f.request(t, "/stream/song.mp3", 1, "bytes=0-"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
		assert.Equal(t, "TIMEOUT", decodeError(t, resp).Error.Code)
	})
}

func TestStreamFile_MidStreamFailure(t *testing.T) {
	const total = 64 << 10
	data := objectBytes(total)
	video := &model.File{ID: 3, Key: "clip.mp4", MimeType: "video/mp4", Size: total, OwnerID: 1}

	tests := []struct {
		name        string
		rangeHeader string
		wantRange   *model.ByteRange
		wantStatus  int
	}{
		{name: "whole object", wantStatus: http.StatusOK},
		{
			name:        "ranged",
			rangeHeader: "bytes=0-",
			wantRange:   &model.ByteRange{Start: 0, End: total - 1, Total: total},
			wantStatus:  http.StatusPartialContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStreamFixture(t, service.StreamOptions{})
			cause := errors.New("upstream reset by storage host 10.0.0.7")
			up := &closeTracker{Reader: &failingReader{prefix: data[:16<<10], err: cause}}
			f.files.On("FindByKey", mock.Anything, "clip.mp4").Return(video, nil)
			f.store.On("Stat", mock.Anything, "clip.mp4").Return(storage.ObjectInfo{Size: total}, nil).Maybe()
			f.store.On("Get", mock.Anything, "clip.mp4", tt.wantRange).Return(up, storage.ObjectInfo{Size: total}, nil)

			base := f.serve(t)
			resp, err := http.DefaultClient.Do(f.liveRequest(t, base+"/stream/clip.mp4", 1, tt.rangeHeader))
			require.NoError(t, err)
			defer resp.Body.Close()

			// The status line and headers went out before the failure.
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, int64(total), resp.ContentLength)
			assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))

			// The body is cut short and holds object bytes only.
			got, err := io.ReadAll(resp.Body)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			assert.NotEmpty(t, got)
			assert.Less(t, len(got), total)
			assert.Equal(t, data[:len(got)], got)
			assert.NotContains(t, string(got), cause.Error())

			assert.Eventually(t, up.closed.Load, 2*time.Second, 10*time.Millisecond)
		})
	}
}

// meteredObject is a large lazily generated object that counts what was pulled.
type meteredObject struct {
	remaining int64
	pulled    atomic.Int64
	closed    atomic.Bool
}

func (m *meteredObject) Read(p []byte) (int, error) {
	if m.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > m.remaining {
		p = p[:m.remaining]
	}
	clear(p)
	m.remaining -= int64(len(p))
	m.pulled.Add(int64(len(p)))
	return len(p), nil
}

func (m *meteredObject) Close() error {
	m.closed.Store(true)
	return nil
}

func TestDownloadFile_SlowClient(t *testing.T) {
	const total = 256 << 20
	f := newStreamFixture(t, service.StreamOptions{})
	up := &meteredObject{remaining: total}
	f.files.On("FindByKey", mock.Anything, "big.bin").Return(&model.File{ID: 4, Key: "big.bin", Size: total, OwnerID: 1}, nil)
	f.store.On("Get", mock.Anything, "big.bin", noRange).Return(up, storage.ObjectInfo{Size: total}, nil)

	base := f.serve(t)
	resp, err := http.DefaultClient.Do(f.liveRequest(t, base+"/download/big.bin", 1, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(total), resp.ContentLength)

	// The client reads nothing: only socket buffers may fill up.
	time.Sleep(300 * time.Millisecond)
	assert.Less(t, up.pulled.Load(), int64(total/4))
	assert.False(t, up.closed.Load())

	// Dropping the connection releases the upstream without draining it.
	require.NoError(t, resp.Body.Close())
	assert.Eventually(t, up.closed.Load, 5*time.Second, 10*time.Millisecond)
	assert.Less(t, up.pulled.Load(), int64(total))
}

func TestStreamFile_ServerSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	data := objectBytes(1000)
	f := newStreamFixture(t, service.StreamOptions{})
	f.files.On("FindByKey", mock.Anything, "song.mp3").Return(song, nil)
	f.store.On("Get", mock.Anything, "song.mp3", noRange).
		Return(io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: 1000}, nil)

	resp, err := f.app.Test(f.request(t, "/download/song.mp3", 1, ""))
	require.NoError(t, err)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	serverSpans := func() []sdktrace.ReadOnlySpan {
		var out []sdktrace.ReadOnlySpan
		for _, s := range sr.Ended() {
			if s.SpanKind() == trace.SpanKindServer {
				out = append(out, s)
			}
		}
		return out
	}
	require.Eventually(t, func() bool { return len(serverSpans()) == 1 }, time.Second, 10*time.Millisecond)

	span := serverSpans()[0]
	assert.Equal(t, "GET /download/:filekey", span.Name())
	assert.Contains(t, span.Attributes(), attribute.Int("http.response.status_code", http.StatusOK))
	assert.Contains(t, span.Attributes(), attribute.Int64("http.response.body.size", 1000))
}

func TestSkipServerSpan(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatBool(SkipServerSpan(c)))
	})

	tests := map[string]bool{
		"/metrics":           true,
		"/download/song.mp3": true,
		"/stream/song.mp3":   true,
		"/files/7/download":  true,
		"/files/7/stream":    true,
		"/files":             false,
		"/upload":            false,
		"/markUnsafe/x":      false,
		"/health":            false,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, strconv.FormatBool(want), string(body))
		})
	}
}

func TestStreamFile_ConcurrentOwners(t *testing.T) {
	f := newStreamFixture(t, service.StreamOptions{})

	contents := map[string][]byte{
		"a.bin": bytes.Repeat([]byte("A"), 4096),
		"b.bin": bytes.Repeat([]byte("B"), 4096),
	}
	f.files.On("FindByKey", mock.Anything, "a.bin").Return(&model.File{ID: 1, Key: "a.bin", OwnerID: 1}, nil)
	f.files.On("FindByKey", mock.Anything, "b.bin").Return(&model.File{ID: 2, Key: "b.bin", OwnerID: 2}, nil)
	for key, data := range contents {
		f.store.On("Get", mock.Anything, key, noRange).Return(
			func(_ context.Context, _ string, _ *model.ByteRange) io.ReadCloser {
				return io.NopCloser(bytes.NewReader(data))
			},
			storage.ObjectInfo{Size: int64(len(data))}, nil)
	}

	base := f.serve(t)

	tokens := map[int64]string{}
	for _, id := range []int64{1, 2} {
		tok, err := f.authn.Issue(&model.User{ID: id})
		require.NoError(t, err)
		tokens[id] = tok
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		owner := int64(i%2 + 1)
		key := "a.bin"
		if owner == 2 {
			key = "b.bin"
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodGet, base+"/download/"+key, nil)
			if !assert.NoError(t, err) {
				return
			}
			req.Header.Set("Authorization", "Bearer "+tokens[owner])

			resp, err := http.DefaultClient.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			got, _ := io.ReadAll(resp.Body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, contents[key], got, fmt.Sprintf("owner %d", owner))
		}()
	}
	wg.Wait()
}
