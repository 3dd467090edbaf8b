package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chymezy/decentra-client/internal/privacy"
	"github.com/chymezy/decentra-client/internal/session"
)

func serveLogged(t *testing.T, mode session.PrivacyMode, identity string) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	pseudo, err := privacy.New()
	if err != nil {
		t.Fatalf("privacy.New: %v", err)
	}

	h := Logger(logger, pseudo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity != "" {
			RecordActor(r.Context(), identity, mode)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	return buf.String()
}

func TestLoggerPseudonymizesPrivacyModes(t *testing.T) {
	line := serveLogged(t, session.ModeWhistleblower, "principal-xyz")
	if strings.Contains(line, "principal-xyz") {
		t.Fatalf("raw identity leaked into the log: %s", line)
	}
	if !strings.Contains(line, "actor=") {
		t.Fatalf("no actor digest in the log: %s", line)
	}
}

func TestLoggerLogsStandardModeActor(t *testing.T) {
	line := serveLogged(t, session.ModeStandard, "principal-xyz")
	if !strings.Contains(line, "actor=principal-xyz") {
		t.Fatalf("standard-mode actor missing: %s", line)
	}
}

func TestLoggerOmitsActorWhenNoneRecorded(t *testing.T) {
	line := serveLogged(t, session.ModeStandard, "")
	if strings.Contains(line, "actor=") {
		t.Fatalf("actor attribute on an anonymous request: %s", line)
	}
	if !strings.Contains(line, "status=204") {
		t.Fatalf("request shape missing: %s", line)
	}
}
