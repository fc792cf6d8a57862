package model

import "fmt"

// ByteRange is an inclusive [Start, End] span of an object of Total bytes.
// Invariant: 0 <= Start <= End < Total.
type ByteRange struct {
	Start int64
	End   int64
	Total int64
}

// Length is the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range response header value.
func (r ByteRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Total)
}

// RequestHeader renders the Range request header sent to the object store.
func (r ByteRange) RequestHeader() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}
