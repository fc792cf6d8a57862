package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/model"
)

func TestNegotiate_Compat(t *testing.T) {
	tests := []struct {
		name   string
		header string
		total  int64
		want   *model.ByteRange
		wantRE bool
	}{
		{name: "no header", header: "", total: 1000, want: nil},
		{name: "open ended", header: "bytes=500-", total: 1000, want: &model.ByteRange{Start: 500, End: 999, Total: 1000}},
		{name: "explicit end ignored", header: "bytes=0-99", total: 1000, want: &model.ByteRange{Start: 0, End: 999, Total: 1000}},
		{name: "malformed starts at zero", header: "garbage", total: 1000, want: &model.ByteRange{Start: 0, End: 999, Total: 1000}},
		{name: "suffix form starts at zero", header: "bytes=-100", total: 1000, want: &model.ByteRange{Start: 0, End: 999, Total: 1000}},
		{name: "first match wins", header: "bytes=10-20,30-40", total: 1000, want: &model.ByteRange{Start: 10, End: 999, Total: 1000}},
		{name: "match anywhere", header: "x bytes=7-", total: 1000, want: &model.ByteRange{Start: 7, End: 999, Total: 1000}},
		{name: "last byte", header: "bytes=999-", total: 1000, want: &model.ByteRange{Start: 999, End: 999, Total: 1000}},
		{name: "start at size", header: "bytes=1000-", total: 1000, wantRE: true},
		{name: "start past size", header: "bytes=5000-", total: 1000, wantRE: true},
		{name: "overflowing start", header: "bytes=99999999999999999999-", total: 1000, wantRE: true},
		{name: "empty object", header: "bytes=0-", total: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(tt.header, tt.total, false)
			if tt.wantRE {
				var re *RangeError
				require.True(t, errors.As(err, &re))
				assert.Equal(t, tt.total, re.Total)
				assert.ErrorIs(t, err, ErrRangeNotSatisfiable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNegotiate_Strict(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *model.ByteRange
		wantRE bool
	}{
		{name: "closed range", header: "bytes=0-99", want: &model.ByteRange{Start: 0, End: 99, Total: 1000}},
		{name: "open ended", header: "bytes=500-", want: &model.ByteRange{Start: 500, End: 999, Total: 1000}},
		{name: "end clamped", header: "bytes=900-5000", want: &model.ByteRange{Start: 900, End: 999, Total: 1000}},
		{name: "suffix", header: "bytes=-100", want: &model.ByteRange{Start: 900, End: 999, Total: 1000}},
		{name: "suffix longer than object", header: "bytes=-5000", want: &model.ByteRange{Start: 0, End: 999, Total: 1000}},
		{name: "zero suffix", header: "bytes=-0", wantRE: true},
		{name: "start past size", header: "bytes=1000-1001", wantRE: true},
		{name: "malformed ignored", header: "garbage", want: nil},
		{name: "other unit ignored", header: "items=0-5", want: nil},
		{name: "multi range ignored", header: "bytes=0-1,5-6", want: nil},
		{name: "reversed ignored", header: "bytes=50-10", want: nil},
		{name: "signed ignored", header: "bytes=+5-", want: nil},
		{name: "no dash ignored", header: "bytes=5", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(tt.header, 1000, true)
			if tt.wantRE {
				assert.ErrorIs(t, err, ErrRangeNotSatisfiable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
