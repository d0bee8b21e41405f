// Package redeemcode generates bearer redemption codes for coupons and rewards.
//
// A code is 20 bytes from crypto/rand encoded as unpadded base32 (32 characters,
// upper case, no 0/1/8/9 ambiguity). Codes carry no information about the user,
// the time, or any sequence and are the sole proof of ownership at redemption.
package redeemcode

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
)

// ByteLength is the number of random bytes in a code (160 bits of entropy).
const ByteLength = 20

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generator produces redemption codes from a random source.
type Generator struct {
	rand io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewWithReader returns a Generator that reads randomness from r.
// Primarily used for testing.
func NewWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a fresh code, or an error if the random source fails.
func (g *Generator) Generate() (string, error) {
	b := make([]byte, ByteLength)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", fmt.Errorf("read random code: %w", err)
	}
	return encoding.EncodeToString(b), nil
}
