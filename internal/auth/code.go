package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DefaultCodeLength is the length of generated one-time codes.
const DefaultCodeLength = 6

var million = big.NewInt(1000000)

// GenerateCode returns a fixed-length hexadecimal one-time code derived from
// cryptographically secure random bytes.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// GenerateNumericCode returns a 6-digit numeric one-time code drawn uniformly
// from [0, 1000000), zero-padded.
func GenerateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, million)
	if err != nil {
		return "", fmt.Errorf("generate numeric code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
