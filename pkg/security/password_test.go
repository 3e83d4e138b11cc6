package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestHasherEncode(t *testing.T) {
	h := NewDigestHasher()

	tests := []struct {
		algorithm string
		want      string
	}{
		{"SHA-256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha-256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"MD5", "900150983cd24fb0d6963f7d28e17f72"},
		{"SHA-1", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"SHA3-256", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			got, err := h.Encode("abc", tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDigestHasherUnknownAlgorithm(t *testing.T) {
	h := NewDigestHasher()

	_, err := h.Encode("abc", "ROT13")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	assert.False(t, h.Supports("ROT13"))
	assert.True(t, h.Supports("sha-512"))
}

func TestFormatValidator(t *testing.T) {
	v := NewFormatValidator()

	assert.True(t, v.CheckFormat("Abcdef1!"))
	assert.False(t, v.CheckFormat("abcdef1!"), "missing upper case")
	assert.False(t, v.CheckFormat("ABCDEF1!"), "missing lower case")
	assert.False(t, v.CheckFormat("Abcdefg!"), "missing digit")
	assert.False(t, v.CheckFormat("Abcdefg1"), "missing special character")
	assert.False(t, v.CheckFormat(""))
}
