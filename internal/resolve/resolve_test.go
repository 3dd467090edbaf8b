package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBatchDeduplicates(t *testing.T) {
	var calls atomic.Int64
	var mu sync.Mutex
	var seen []uint64

	fn := func(_ context.Context, keys []uint64) (map[uint64]string, error) {
		calls.Add(1)
		mu.Lock()
		seen = append(seen, keys...)
		mu.Unlock()
		out := make(map[uint64]string, len(keys))
		for _, k := range keys {
			out[k] = fmt.Sprintf("v%d", k)
		}
		return out, nil
	}

	got, err := Batch(context.Background(), []uint64{1, 2, 1, 3, 2, 1}, 10, fn, discardLogger())
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("resolved %d keys, want 3: %v", len(got), got)
	}
	if calls.Load() != 1 {
		t.Fatalf("resolver called %d times, want 1", calls.Load())
	}
	if len(seen) != 3 {
		t.Fatalf("resolver received %d keys, want 3 after dedupe", len(seen))
	}
	if got["2"] != "v2" {
		t.Fatalf(`got["2"] = %q, want "v2"`, got["2"])
	}
}

func TestBatchChunksConcurrently(t *testing.T) {
	var calls atomic.Int64
	fn := func(_ context.Context, keys []int) (map[int]int, error) {
		calls.Add(1)
		if len(keys) > 10 {
			return nil, fmt.Errorf("chunk too large: %d", len(keys))
		}
		out := make(map[int]int, len(keys))
		for _, k := range keys {
			out[k] = k * 10
		}
		return out, nil
	}

	keys := make([]int, 25)
	for i := range keys {
		keys[i] = i
	}
	got, err := Batch(context.Background(), keys, 10, fn, discardLogger())
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("resolver called %d times, want 3 chunks for 25 keys", calls.Load())
	}
	if len(got) != 25 {
		t.Fatalf("resolved %d keys, want 25", len(got))
	}
}

func TestBatchSettlesPerKey(t *testing.T) {
	// One bad key inside a chunk leaves the other nine intact: the
	// resolver skips it, and Batch merges whatever resolved.
	fn := func(_ context.Context, keys []int) (map[int]int, error) {
		out := make(map[int]int, len(keys))
		for _, k := range keys {
			if k == 3 {
				continue
			}
			out[k] = k
		}
		return out, nil
	}

	keys := make([]int, 10)
	for i := range keys {
		keys[i] = i
	}
	got, err := Batch(context.Background(), keys, 10, fn, discardLogger())
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(got) != 9 {
		t.Fatalf("resolved %d keys, want 9 when one key fails", len(got))
	}
	if _, ok := got["3"]; ok {
		t.Fatal("failed key must be absent")
	}
	if got["4"] != 4 {
		t.Fatalf(`got["4"] = %d, want 4`, got["4"])
	}
}

func TestBatchToleratesFailedChunk(t *testing.T) {
	// A chunk-wide fault (resolver error) drops only that chunk.
	fn := func(_ context.Context, keys []int) (map[int]int, error) {
		if keys[0] >= 10 {
			return nil, errors.New("backend unavailable")
		}
		out := make(map[int]int, len(keys))
		for _, k := range keys {
			out[k] = k
		}
		return out, nil
	}

	keys := make([]int, 20)
	for i := range keys {
		keys[i] = i
	}
	got, err := Batch(context.Background(), keys, 10, fn, discardLogger())
	if err != nil {
		t.Fatalf("Batch() must not propagate chunk failures, got: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("resolved %d keys, want 10 from the surviving chunk", len(got))
	}
	if _, ok := got["13"]; ok {
		t.Fatal("key from failed chunk must be absent")
	}
}

func TestBatchEmptyKeys(t *testing.T) {
	fn := func(_ context.Context, keys []int) (map[int]int, error) {
		t.Fatal("resolver must not run for empty input")
		return nil, nil
	}
	got, err := Batch(context.Background(), nil, 10, fn, discardLogger())
	if err != nil {
		t.Fatalf("Batch() error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d entries, want empty map", len(got))
	}
}

func TestBatchNilResolver(t *testing.T) {
	if _, err := Batch[int, int](context.Background(), []int{1}, 10, nil, discardLogger()); err == nil {
		t.Fatal("nil resolver must fail")
	}
}
