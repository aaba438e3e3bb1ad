// package pkce generates Proof Key for Code Exchange verifiers and S256 challenges (RFC 7636).
package pkce

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

const (
	// DefaultLength is the verifier length used by [Generate].
	DefaultLength = 128
	MinLength     = 43
	MaxLength     = 128

	// Method is the only challenge method this package produces.
	Method = "S256"
)

// unreserved is the RFC 7636 verifier alphabet: ALPHA / DIGIT / "-" / "." / "_" / "~".
const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// Pair is a verifier and its derived challenge.
type Pair struct {
	Verifier  string
	Challenge string
}

var random io.Reader = rand.Reader

// GenerateVerifier returns a crypto-random verifier of the given length.
//
// Bytes that would bias the alphabet are rejected and redrawn.
func GenerateVerifier(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("verifier length must be between %d and %d, got %d", MinLength, MaxLength, length)
	}

	limit := byte(256 - 256%len(unreserved))
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, unreserved[int(b)%len(unreserved)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// Challenge returns Base64URL(SHA-256(verifier)) without padding.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// Generate returns a fresh [Pair] with a [DefaultLength] verifier.
func Generate() (Pair, error) {
	v, err := GenerateVerifier(DefaultLength)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Verifier: v, Challenge: Challenge(v)}, nil
}

// Valid reports whether verifier has an allowed length and uses only unreserved characters.
func Valid(verifier string) bool {
	if len(verifier) < MinLength || len(verifier) > MaxLength {
		return false
	}
	for i := 0; i < len(verifier); i++ {
		if !isUnreserved(verifier[i]) {
			return false
		}
	}
	return true
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
