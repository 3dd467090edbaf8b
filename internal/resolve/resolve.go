// Package resolve turns N-item lookups into a small number of concurrent
// chunked calls. It is the shared machinery behind author-profile and
// like-status enrichment in feed assembly.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultChunkSize bounds how many keys a single backend call may carry.
const DefaultChunkSize = 10

// Func resolves one chunk of keys into key/value pairs. Each key settles
// independently: a key that cannot be resolved is simply absent from the
// returned map, and must not fail the others. Returning an error is
// reserved for faults that doom the whole chunk, such as a cancelled
// context.
type Func[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Batch resolves keys through fn: keys are deduplicated, split into
// chunks of at most chunkSize, and the chunks are resolved concurrently.
// Resolution settles per key — keys the resolver leaves out are simply
// absent from the result, and a chunk-wide error is logged and skipped
// rather than failing the batch, so the result may be partial. Result
// keys are stringified with %v, which keeps the map usable for mixed
// numeric/string id types.
func Batch[K comparable, V any](ctx context.Context, keys []K, chunkSize int, fn Func[K, V], logger *slog.Logger) (map[string]V, error) {
	if fn == nil {
		return nil, fmt.Errorf("resolve: nil resolver func")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	unique := dedupe(keys)
	if len(unique) == 0 {
		return map[string]V{}, nil
	}

	chunks := chunk(unique, chunkSize)

	var (
		mu     sync.Mutex
		out    = make(map[string]V, len(unique))
		wg     sync.WaitGroup
		failed int
	)
	for _, c := range chunks {
		wg.Add(1)
		go func(keys []K) {
			defer wg.Done()
			resolved, err := fn(ctx, keys)
			if err != nil {
				logger.WarnContext(ctx, "batch chunk failed",
					slog.Int("keys", len(keys)),
					slog.String("error", err.Error()))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			for k, v := range resolved {
				out[fmt.Sprintf("%v", k)] = v
			}
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	if failed > 0 {
		logger.WarnContext(ctx, "batch resolved partially",
			slog.Int("chunks", len(chunks)),
			slog.Int("failed", failed),
			slog.Int("resolved", len(out)))
	}
	return out, nil
}

// Key renders a key the same way Batch does, for symmetric lookups.
func Key[K comparable](k K) string {
	return fmt.Sprintf("%v", k)
}

func dedupe[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func chunk[K any](keys []K, size int) [][]K {
	var chunks [][]K
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
