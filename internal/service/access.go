package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// AccessResolver maps a file reference to its record and enforces ownership.
// Ownership is strict equality of owner and principal; admins get no bypass.
type AccessResolver struct {
	files  repository.FileRepository
	cache  *expirable.LRU[string, model.File]
	tracer trace.Tracer
}

// NewAccessResolver builds a resolver. cacheSize 0 disables the record cache.
func NewAccessResolver(files repository.FileRepository, cacheSize int, ttl time.Duration) *AccessResolver {
	r := &AccessResolver{
		files:  files,
		tracer: otel.Tracer("filevault/service"),
	}
	if cacheSize > 0 {
		r.cache = expirable.NewLRU[string, model.File](cacheSize, nil, ttl)
	}
	return r
}

// Resolve returns the record behind ref if p owns it.
func (r *AccessResolver) Resolve(ctx context.Context, p model.Principal, ref model.FileRef) (*model.File, error) {
	ctx, span := r.tracer.Start(ctx, "AccessResolver.Resolve")
	defer span.End()

	f, err := r.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("file.id", f.ID), attribute.Int64("file.owner_id", f.OwnerID))

	if f.OwnerID != p.ID {
		return nil, ErrForbidden
	}
	return f, nil
}

// Invalidate drops f from the record cache.
func (r *AccessResolver) Invalidate(f *model.File) {
	if r.cache == nil || f == nil {
		return
	}
	r.cache.Remove(keyCacheKey(f.Key))
	r.cache.Remove(idCacheKey(f.ID))
}

func (r *AccessResolver) lookup(ctx context.Context, ref model.FileRef) (*model.File, error) {
	ck := idCacheKey(ref.ID)
	if ref.IsKey() {
		ck = keyCacheKey(ref.Key)
	}
	if r.cache != nil {
		if f, ok := r.cache.Get(ck); ok {
			return &f, nil
		}
	}

	var (
		f   *model.File
		err error
	)
	switch {
	case ref.IsKey():
		f, err = r.files.FindByKey(ctx, ref.Key)
	case ref.ID > 0:
		f, err = r.files.FindByID(ctx, ref.ID)
	default:
		return nil, ErrNotFound
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		r.cache.Add(keyCacheKey(f.Key), *f)
		r.cache.Add(idCacheKey(f.ID), *f)
	}
	return f, nil
}

func keyCacheKey(key string) string { return "key:" + key }

func idCacheKey(id int64) string { return "id:" + strconv.FormatInt(id, 10) }
