// Package privacy keeps raw identifiers out of logs for sessions in the
// anonymous and whistleblower modes. Identifiers are digested with a
// per-process salt, so one run's log lines correlate with each other
// but never across runs or back to the identifier.
package privacy

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/blake2b"
)

// Pseudonymizer produces short stable digests for log identifiers.
type Pseudonymizer struct {
	salt []byte
}

// New returns a pseudonymizer with a fresh random salt.
func New() (*Pseudonymizer, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("privacy: generating salt: %w", err)
	}
	return &Pseudonymizer{salt: salt}, nil
}

// Digest maps an identifier to a short hex pseudonym. Equal inputs give
// equal outputs for the lifetime of the process.
func (p *Pseudonymizer) Digest(id string) string {
	h, err := blake2b.New256(p.salt)
	if err != nil {
		// Only possible with an oversized key, and ours is fixed at 16 bytes.
		panic(err)
	}
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Attr returns a slog attribute with the digested identifier.
func (p *Pseudonymizer) Attr(key, id string) slog.Attr {
	return slog.String(key, p.Digest(id))
}
