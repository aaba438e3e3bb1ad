package pkce

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestChallenge(t *testing.T) {
	tc := []struct {
		name     string
		verifier string
		want     string
	}{
		{name: "abc", verifier: "abc", want: "ungWv48Bz-pBQUDeXa4iI7ADYaOWF3qctBD_YfIAFa0"},
		{name: "RFC 7636 appendix B", verifier: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk", want: "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Challenge(tt.verifier); got != tt.want {
				t.Errorf("Challenge() = %v, want %v", got, tt.want)
			}
			if Challenge(tt.verifier) != Challenge(tt.verifier) {
				t.Error("expected challenge to be deterministic")
			}
		})
	}

	t.Run("No padding or standard alphabet", func(t *testing.T) {
		c := Challenge("some verifier")
		if strings.ContainsAny(c, "+/=") {
			t.Errorf("expected base64url without padding, got %s", c)
		}
	})
}

func TestGenerate(t *testing.T) {
	t.Run("Default pair", func(t *testing.T) {
		p, err := Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Verifier) != DefaultLength {
			t.Errorf("expected verifier length %d, got %d", DefaultLength, len(p.Verifier))
		}
		if !Valid(p.Verifier) {
			t.Errorf("expected verifier to be valid, got %q", p.Verifier)
		}
		if p.Challenge != Challenge(p.Verifier) {
			t.Error("expected challenge derived from verifier")
		}
	})

	t.Run("Two pairs differ", func(t *testing.T) {
		a, _ := Generate()
		b, _ := Generate()
		if a.Verifier == b.Verifier {
			t.Error("expected different verifiers")
		}
	})

	t.Run("Length bounds", func(t *testing.T) {
		for _, n := range []int{0, 42, 129} {
			if _, err := GenerateVerifier(n); err == nil {
				t.Errorf("expected error for length %d", n)
			}
		}
		v, err := GenerateVerifier(MinLength)
		if err != nil || len(v) != MinLength {
			t.Errorf("expected %d character verifier, got %q (%v)", MinLength, v, err)
		}
	})

	t.Run("Biased bytes are redrawn", func(t *testing.T) {
		original := random
		t.Cleanup(func() { random = original })

		// 0xff is above the rejection limit, 0x00 maps to 'A' and 0x41 (65) maps to '~'.
		src := bytes.Repeat([]byte{0xff, 0x00, 0x41}, 200)
		random = bytes.NewReader(src)

		v, err := GenerateVerifier(MinLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.ContainsRune(v, 0xff) {
			t.Error("rejected byte leaked into verifier")
		}
		if !strings.HasPrefix(v, "A~A~") {
			t.Errorf("expected alternating A~ prefix, got %q", v[:4])
		}
	})

	t.Run("Random source failure", func(t *testing.T) {
		original := random
		t.Cleanup(func() { random = original })
		random = failingReader{}

		if _, err := Generate(); err == nil {
			t.Error("expected error from failing random source")
		}
	})
}

func TestValid(t *testing.T) {
	if Valid("short") {
		t.Error("expected short verifier to be invalid")
	}
	if Valid(strings.Repeat("a", 42) + "!") {
		t.Error("expected reserved character to be invalid")
	}
	if !Valid(strings.Repeat("a-._~", 10)) {
		t.Error("expected unreserved characters to be valid")
	}
}
