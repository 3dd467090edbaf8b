// Package session manages the authenticated session: login through an
// identity provider, privacy-mode lifetimes, profile bootstrap, and the
// idle timeout.
package session

import "time"

// PrivacyMode selects how long-lived and how traceable a session is.
type PrivacyMode string

const (
	// ModeStandard is the everyday mode with the longest session.
	ModeStandard PrivacyMode = "standard"
	// ModeAnonymous shortens the session for privacy-conscious browsing.
	ModeAnonymous PrivacyMode = "anonymous"
	// ModeWhistleblower keeps the session as short as practical.
	ModeWhistleblower PrivacyMode = "whistleblower"
)

// Valid reports whether m is a known mode.
func (m PrivacyMode) Valid() bool {
	switch m {
	case ModeStandard, ModeAnonymous, ModeWhistleblower:
		return true
	}
	return false
}

// SessionCeiling is the maximum session lifetime requested from the
// identity provider for this mode. Unknown modes get the standard
// ceiling.
func (m PrivacyMode) SessionCeiling() time.Duration {
	switch m {
	case ModeAnonymous:
		return 24 * time.Hour
	case ModeWhistleblower:
		return 2 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Pseudonymize reports whether identifiers for this mode must be
// digested before landing in logs.
func (m PrivacyMode) Pseudonymize() bool {
	return m == ModeAnonymous || m == ModeWhistleblower
}
