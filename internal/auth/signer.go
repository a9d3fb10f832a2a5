package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CodeSigner produces deterministic keyed signatures of one-time codes so
// they can be stored and compared without ever persisting the plaintext.
type CodeSigner struct {
	key []byte
}

// NewCodeSigner creates a signer over the given secret key.
func NewCodeSigner(key string) *CodeSigner {
	return &CodeSigner{key: []byte(key)}
}

// Sign returns the hex-encoded HMAC-SHA256 of message. Same (message, key)
// always yields the same output.
func (s *CodeSigner) Sign(message string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches re-derives the signature of the submitted code and compares it to
// the stored one in constant time.
func (s *CodeSigner) Matches(submitted, storedSignature string) bool {
	return hmac.Equal([]byte(s.Sign(submitted)), []byte(storedSignature))
}
