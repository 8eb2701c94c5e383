package hasher

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

// Algorithm identifies a supported content hash algorithm
type Algorithm string

const (
	// Blake3 is the default algorithm: cryptographic strength, 256-bit digest
	Blake3 Algorithm = "blake3"
	// SHA256 is a cryptographic alternative, 256-bit digest
	SHA256 Algorithm = "sha256"
	// XXH64 is a fast non-cryptographic algorithm, 64-bit digest
	XXH64 Algorithm = "xxh64"
)

const blake3DigestSize = 32

// Parse validates an algorithm name from configuration
func Parse(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case Blake3, SHA256, XXH64:
		return Algorithm(name), nil
	case "":
		return Blake3, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm: %s (must be blake3, sha256, or xxh64)", name)
	}
}

// New returns a fresh hash state for the algorithm. Digests are rendered
// as lowercase hex via hash.Hash.Sum.
func (a Algorithm) New() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case XXH64:
		return xxhash.New()
	default:
		return blake3.New(blake3DigestSize, nil)
	}
}

// HexLen returns the digest length in hex characters
func (a Algorithm) HexLen() int {
	switch a {
	case XXH64:
		return 16
	default:
		return 64
	}
}

func (a Algorithm) String() string {
	return string(a)
}
