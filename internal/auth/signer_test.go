package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSigner_Deterministic(t *testing.T) {
	s := NewCodeSigner("signing-key")

	first := s.Sign("123456")
	second := s.Sign("123456")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "hex-encoded sha256 output")
}

func TestCodeSigner_DifferentInputsDiffer(t *testing.T) {
	s := NewCodeSigner("signing-key")
	other := NewCodeSigner("other-key")

	assert.NotEqual(t, s.Sign("123456"), s.Sign("123457"))
	assert.NotEqual(t, s.Sign("123456"), other.Sign("123456"))
}

func TestCodeSigner_Matches(t *testing.T) {
	s := NewCodeSigner("signing-key")
	stored := s.Sign("a1b2c3")

	assert.True(t, s.Matches("a1b2c3", stored))
	assert.False(t, s.Matches("a1b2c4", stored))
	assert.False(t, s.Matches("a1b2c3", "deadbeef"))
}
