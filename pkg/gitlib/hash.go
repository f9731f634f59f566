// Package gitlib wraps libgit2 for the read-only repository access refactoring
// mining needs: revision resolution, history walks, rename-aware tree diffs and
// blob contents.
package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

const (
	// HashSize is the size of a SHA-1 hash in bytes.
	HashSize = 20
	// HashHexSize is the size of a hex-encoded SHA-1 hash.
	HashHexSize = 40

	hexBase  = 10
	hexShift = 4
)

// ErrInvalidHash is returned when a string is not a full hex object id.
var ErrInvalidHash = errors.New("invalid object hash")

// Hash represents a git object hash (SHA-1).
type Hash [HashSize]byte

// ParseHash decodes a full 40 character hex object id.
func ParseHash(hexStr string) (Hash, error) {
	var hash Hash

	if len(hexStr) != HashHexSize {
		return hash, fmt.Errorf("%w: %q", ErrInvalidHash, hexStr)
	}

	for i := range HashSize {
		hi, okHi := nibble(hexStr[i*2])
		lo, okLo := nibble(hexStr[i*2+1])

		if !okHi || !okLo {
			return Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, hexStr)
		}

		hash[i] = hi<<hexShift | lo
	}

	return hash, nil
}

// MustParseHash is ParseHash for constants and fixtures.
func MustParseHash(hexStr string) Hash {
	h, err := ParseHash(hexStr)
	if err != nil {
		panic(err)
	}

	return h
}

func nibble(char byte) (byte, bool) {
	switch {
	case char >= '0' && char <= '9':
		return char - '0', true
	case char >= 'a' && char <= 'f':
		return char - 'a' + hexBase, true
	case char >= 'A' && char <= 'F':
		return char - 'A' + hexBase, true
	default:
		return 0, false
	}
}

// HashFromOid converts a libgit2 Oid to Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash

	if oid != nil {
		copy(h[:], oid[:])
	}

	return h
}

// String returns the hex representation of the hash.
func (h Hash) String() string {
	const hexChars = "0123456789abcdef"

	buf := make([]byte, HashHexSize)

	for i, b := range h {
		buf[i*2] = hexChars[b>>hexShift]
		buf[i*2+1] = hexChars[b&0x0f]
	}

	return string(buf)
}

// Short returns the abbreviated form used in log lines.
func (h Hash) Short() string {
	const shortLen = 7

	return h.String()[:shortLen]
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts Hash back to libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}
