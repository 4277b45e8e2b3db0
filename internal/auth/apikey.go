package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// APIKeyVerifier checks client keys against the configured shared key.
type APIKeyVerifier struct {
	digest [sha256.Size]byte
}

// NewAPIKeyVerifier creates a verifier for key.
func NewAPIKeyVerifier(key string) *APIKeyVerifier {
	return &APIKeyVerifier{digest: sha256.Sum256([]byte(key))}
}

// Verify compares candidate with the configured key in constant time.
// Digests are compared so the key length does not leak either.
func (v *APIKeyVerifier) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}
	d := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(d[:], v.digest[:]) == 1
}
