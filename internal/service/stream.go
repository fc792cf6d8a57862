package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"filevault/internal/model"
	"filevault/internal/storage"
)

// Endpoint labels used in logs and metrics.
const (
	EndpointDownload = "download"
	EndpointStream   = "stream"
)

const (
	defaultOpenTimeout = 10 * time.Second
	defaultChunkSize   = 64 * 1024
	retryInitial       = 50 * time.Millisecond
)

// StreamOptions tune the open phase and the relay buffer.
type StreamOptions struct {
	OpenTimeout time.Duration
	ChunkSize   int
	OpenRetries int
	StrictRange bool
}

// StreamService opens ownership-checked read streams over stored objects.
//
// Opening is the only phase that can fail with a status code: metadata lookup,
// stat request, stream open and the first upstream byte all happen before a
// Session is returned. Everything after that surfaces as a read error on the
// Session.
type StreamService struct {
	access  *AccessResolver
	store   storage.Storage
	opts    StreamOptions
	metrics *StreamMetrics
	log     zerolog.Logger
	tracer  trace.Tracer
}

// NewStreamService constructs a StreamService. metrics may be nil.
func NewStreamService(access *AccessResolver, store storage.Storage, opts StreamOptions, metrics *StreamMetrics, log zerolog.Logger) *StreamService {
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.OpenRetries <= 0 {
		opts.OpenRetries = 1
	}
	return &StreamService{
		access:  access,
		store:   store,
		opts:    opts,
		metrics: metrics,
		log:     log.With().Str("component", "stream_service").Logger(),
		tracer:  otel.Tracer("filevault/service"),
	}
}

// OpenDownload opens the whole object behind ref.
func (s *StreamService) OpenDownload(ctx context.Context, p model.Principal, ref model.FileRef) (*Session, error) {
	return s.open(ctx, EndpointDownload, p, ref, "")
}

// OpenStream opens ref honoring rangeHeader. An empty header opens the whole object.
func (s *StreamService) OpenStream(ctx context.Context, p model.Principal, ref model.FileRef, rangeHeader string) (*Session, error) {
	return s.open(ctx, EndpointStream, p, ref, rangeHeader)
}

func (s *StreamService) open(ctx context.Context, endpoint string, p model.Principal, ref model.FileRef, rangeHeader string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "StreamService.Open", trace.WithAttributes(
		attribute.String("stream.endpoint", endpoint),
		attribute.Bool("stream.range_requested", rangeHeader != ""),
	))
	defer span.End()

	sess, err := s.openSession(ctx, endpoint, p, ref, rangeHeader)
	if err != nil {
		outcome := openOutcome(err)
		s.metrics.rejected(endpoint, outcome)
		if outcome == OutcomeOpenError || outcome == OutcomeTimeout {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			s.logger(ctx).Error().Err(err).
				Str("event", "stream_open_failed").
				Str("endpoint", endpoint).
				Str("outcome", outcome).
				Msg("failed to open object stream")
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("stream.size", sess.Size))
	if sess.Range != nil {
		span.SetAttributes(attribute.Int64("stream.range_start", sess.Range.Start))
	}
	s.metrics.started()
	return sess, nil
}

func (s *StreamService) openSession(ctx context.Context, endpoint string, p model.Principal, ref model.FileRef, rangeHeader string) (*Session, error) {
	deadline := time.Now().Add(s.opts.OpenTimeout)
	metaCtx, cancelMeta := context.WithDeadline(ctx, deadline)
	defer cancelMeta()

	f, err := s.access.Resolve(metaCtx, p, ref)
	if err != nil {
		return nil, openPhaseError(metaCtx, err)
	}

	var rng *model.ByteRange
	if rangeHeader != "" {
		var info storage.ObjectInfo
		err := s.retry(metaCtx, func() error {
			var statErr error
			info, statErr = s.store.Stat(metaCtx, f.Key)
			return statErr
		})
		if err != nil {
			return nil, openPhaseError(metaCtx, translateStoreError(err, nil))
		}
		rng, err = Negotiate(rangeHeader, info.Size, s.opts.StrictRange)
		if err != nil {
			return nil, err
		}
	}

	// The stream context outlives the open deadline; the timer only guards the open phase.
	streamCtx, cancelStream := context.WithCancelCause(ctx)
	timer := time.AfterFunc(time.Until(deadline), func() { cancelStream(ErrTimeout) })

	var (
		upstream io.ReadCloser
		body     *bufio.Reader
		info     storage.ObjectInfo
	)
	err = s.retry(streamCtx, func() error {
		rc, objInfo, getErr := s.store.Get(streamCtx, f.Key, rng)
		if getErr != nil {
			return getErr
		}
		br := bufio.NewReaderSize(rc, s.opts.ChunkSize)
		if _, peekErr := br.Peek(1); peekErr != nil && !errors.Is(peekErr, io.EOF) {
			rc.Close()
			return peekErr
		}
		upstream, body, info = rc, br, objInfo
		return nil
	})

	fired := !timer.Stop()
	if err == nil && fired {
		upstream.Close()
		err = ErrTimeout
	}
	if err != nil {
		cancelStream(err)
		if fired || errors.Is(context.Cause(streamCtx), ErrTimeout) {
			return nil, ErrTimeout
		}
		return nil, translateStoreError(err, rng)
	}

	size := int64(-1)
	switch {
	case rng != nil:
		size = rng.Length()
	case info.Size > 0:
		size = info.Size
	}

	return &Session{
		File:     f,
		Range:    rng,
		Size:     size,
		body:     body,
		upstream: upstream,
		cancel:   func() { cancelStream(context.Canceled) },
		endpoint: endpoint,
		metrics:  s.metrics,
		log: s.logger(ctx).With().
			Str("endpoint", endpoint).
			Str("file_key", f.Key).
			Int64("owner_id", f.OwnerID).
			Logger(),
		started: time.Now(),
	}, nil
}

// logger prefers the request-scoped logger carried by ctx so stream events
// share the request_id of the access log line.
func (s *StreamService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		cl := l.With().Str("component", "stream_service").Logger()
		return &cl
	}
	return &s.log
}

// retry runs op with exponential backoff up to OpenRetries attempts.
// A missing object or a refused range is never retried.
func (s *StreamService) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitial

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidRange) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(s.opts.OpenRetries)))
	return err
}

// openPhaseError maps an expired open deadline to ErrTimeout.
func openPhaseError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && openOutcome(err) == OutcomeOpenError {
		return ErrTimeout
	}
	return err
}

func translateStoreError(err error, rng *model.ByteRange) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	case errors.Is(err, storage.ErrInvalidRange) && rng != nil:
		return &RangeError{Total: rng.Total}
	default:
		return fmt.Errorf("open object stream: %w", err)
	}
}

func openOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, ErrObjectNotFound):
		return OutcomeObjectNotFound
	case errors.Is(err, ErrRangeNotSatisfiable):
		return OutcomeRangeUnsatisfied
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	default:
		return OutcomeOpenError
	}
}

// Session is one open object stream bound to a single request.
// It reads from the upstream only when Read is called and releases the upstream
// on Close, which is idempotent. Read and Close must not run concurrently.
type Session struct {
	File  *model.File
	Range *model.ByteRange
	// Size is the number of body bytes, or -1 when the backend did not report it.
	Size int64

	body     *bufio.Reader
	upstream io.ReadCloser
	cancel   func()
	endpoint string
	metrics  *StreamMetrics
	log      zerolog.Logger
	started  time.Time

	sent int64
	eof  bool
	err  error
	once sync.Once
}

// Partial reports whether the session serves a byte range.
func (s *Session) Partial() bool { return s.Range != nil }

// Read relays upstream bytes.
func (s *Session) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	s.sent += int64(n)
	s.metrics.addBytes(s.endpoint, n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.eof = true
		} else if s.err == nil {
			s.err = err
		}
	}
	return n, err
}

// Close releases the upstream stream and records the outcome.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		err = s.upstream.Close()
		s.cancel()

		outcome := s.outcome()
		s.metrics.finished(s.endpoint, outcome)

		ev := s.log.Debug()
		if outcome != OutcomeCompleted {
			ev = s.log.Warn().AnErr("error", s.err)
		}
		ev.Str("event", "stream_closed").
			Str("outcome", outcome).
			Int64("bytes", s.sent).
			Dur("duration", time.Since(s.started)).
			Msg("stream session closed")
	})
	return err
}

// BytesSent is the number of bytes handed to the reader so far.
func (s *Session) BytesSent() int64 { return s.sent }

// Err is the first upstream read error, if any.
func (s *Session) Err() error { return s.err }

func (s *Session) outcome() string {
	switch {
	case s.err != nil:
		return OutcomeFailed
	case s.eof && (s.Size < 0 || s.sent == s.Size):
		return OutcomeCompleted
	case s.eof:
		return OutcomeFailed
	default:
		return OutcomeAborted
	}
}
