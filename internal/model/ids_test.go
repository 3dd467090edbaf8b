package model

import (
	"testing"
	"time"
)

func TestNanosMillis(t *testing.T) {
	tests := []struct {
		name string
		in   Nanos
		want int64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "one millisecond", in: 1_000_000, want: 1},
		{name: "truncates sub-millisecond remainder", in: 1_999_999, want: 1},
		{
			// Backend timestamps exceed 2^53 — the conversion must not
			// round-trip through a float.
			name: "beyond float53 range",
			in:   Nanos(1_755_000_000_123_456_789),
			want: 1_755_000_000_123,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Millis(); got != tt.want {
				t.Errorf("Millis() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNanosTime(t *testing.T) {
	n := Nanos(1_755_000_000_123_456_789)
	want := time.UnixMilli(1_755_000_000_123)

	if got := n.Time(); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}
