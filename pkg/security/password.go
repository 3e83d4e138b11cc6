package security

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "SHA-256"

var ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")

// DigestHasher encodes passwords as lowercase hex digests so that stored history
// entries can be compared by equality.
type DigestHasher struct {
	algorithms map[string]func() hash.Hash
}

func NewDigestHasher() *DigestHasher {
	return &DigestHasher{
		algorithms: map[string]func() hash.Hash{
			"MD5":      md5.New,
			"SHA-1":    sha1.New,
			"SHA-256":  sha256.New,
			"SHA-384":  sha512.New384,
			"SHA-512":  sha512.New,
			"SHA3-256": sha3.New256,
			"SHA3-512": sha3.New512,
		},
	}
}

// Encode digests raw with the named algorithm. Names are case-insensitive and
// an empty name selects DefaultAlgorithm.
func (h *DigestHasher) Encode(raw, algorithm string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(algorithm))
	if name == "" {
		name = DefaultAlgorithm
	}

	newHash, ok := h.algorithms[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	d := newHash()
	d.Write([]byte(raw))
	return hex.EncodeToString(d.Sum(nil)), nil
}

// Supports reports whether the algorithm can be used by Encode.
func (h *DigestHasher) Supports(algorithm string) bool {
	_, ok := h.algorithms[strings.ToUpper(strings.TrimSpace(algorithm))]
	return ok
}
