package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SessionTokenPrefix marks session tokens for readability in logs and tools.
const SessionTokenPrefix = "sess_"

// sessionTokenBytes is the entropy of a session token (256 bits).
const sessionTokenBytes = 32

// NewSessionToken generates a cryptographically random session token of the
// form "sess_" followed by 64 hex characters.
func NewSessionToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return SessionTokenPrefix + hex.EncodeToString(raw), nil
}

// DeviceFingerprint derives a one-way fingerprint from the device token and
// the client address it was seen from.
func DeviceFingerprint(deviceToken, clientAddress string) string {
	sum := sha256.Sum256([]byte(deviceToken + clientAddress))
	return hex.EncodeToString(sum[:])
}
