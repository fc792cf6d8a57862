package service

import (
	"regexp"
	"strconv"
	"strings"

	"filevault/internal/model"
)

var compatRangePattern = regexp.MustCompile(`bytes=(\d+)-`)

// Negotiate turns a Range header into the span to serve. A nil range means
// the whole object is served with 200.
//
// In compatibility mode the start offset is the first "bytes=N-" match, or 0
// when nothing matches, and the range always runs to the last byte. Strict
// mode parses one "a-b", "a-" or "-n" range and ignores anything else.
// Both modes reject a start at or past the end of the object.
func Negotiate(header string, total int64, strict bool) (*model.ByteRange, error) {
	if header == "" || total <= 0 {
		return nil, nil
	}
	if strict {
		return negotiateStrict(header, total)
	}

	var start int64
	if m := compatRangePattern.FindStringSubmatch(header); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, &RangeError{Total: total}
		}
		start = v
	}
	if start >= total {
		return nil, &RangeError{Total: total}
	}
	return &model.ByteRange{Start: start, End: total - 1, Total: total}, nil
}

func negotiateStrict(header string, total int64) (*model.ByteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil, nil
	}
	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, nil
	}

	if first == "" {
		n, ok := parseOffset(last)
		if !ok {
			return nil, nil
		}
		if n == 0 {
			return nil, &RangeError{Total: total}
		}
		if n > total {
			n = total
		}
		return &model.ByteRange{Start: total - n, End: total - 1, Total: total}, nil
	}

	start, ok := parseOffset(first)
	if !ok {
		return nil, nil
	}
	end := total - 1
	if last != "" {
		e, ok := parseOffset(last)
		if !ok || e < start {
			return nil, nil
		}
		if e < end {
			end = e
		}
	}
	if start >= total {
		return nil, &RangeError{Total: total}
	}
	return &model.ByteRange{Start: start, End: end, Total: total}, nil
}

// parseOffset accepts only unsigned decimal digits.
func parseOffset(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
