// Package middleware contains HTTP middleware shared across routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chymezy/decentra-client/internal/privacy"
	"github.com/chymezy/decentra-client/internal/session"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// and bytes written, which the standard interface doesn't expose.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// actorRecord lets inner middleware report the resolved session back to
// the request logger, which runs outside the auth layer. It is mutable
// because context values only flow inward.
type actorRecord struct {
	mu       sync.Mutex
	identity string
	mode     session.PrivacyMode
}

type actorKey struct{}

// RecordActor notes the request's resolved identity and privacy mode
// for the request log. A no-op outside a Logger-wrapped chain.
func RecordActor(ctx context.Context, identity string, mode session.PrivacyMode) {
	rec, ok := ctx.Value(actorKey{}).(*actorRecord)
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.identity = identity
	rec.mode = mode
	rec.mu.Unlock()
}

// Logger logs one structured line per completed request. The actor
// attribute is pseudonymized for sessions in the anonymous and
// whistleblower modes, so those lines never tie a request back to an
// identity.
func Logger(logger *slog.Logger, pseudo *privacy.Pseudonymizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			rec := &actorRecord{mode: session.ModeStandard}
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, rec))

			next.ServeHTTP(wrapped, r)

			attrs := []slog.Attr{
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			}
			rec.mu.Lock()
			identity, mode := rec.identity, rec.mode
			rec.mu.Unlock()
			if identity != "" {
				if mode.Pseudonymize() && pseudo != nil {
					attrs = append(attrs, pseudo.Attr("actor", identity))
				} else {
					attrs = append(attrs, slog.String("actor", identity))
				}
			}
			logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
		})
	}
}
