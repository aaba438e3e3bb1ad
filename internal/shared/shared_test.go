package shared

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "comma separated", input: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "extra whitespace", input: "  a ,  b,c  ", want: []string{"a", "b", "c"}},
		{name: "space separated", input: "user-read-email user-top-read", want: []string{"user-read-email", "user-top-read"}},
		{name: "empty", input: "", want: []string{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SplitList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateState()

	if len(a) != 32 {
		t.Errorf("expected 32 character state, got %d", len(a))
	}
	if a == b {
		t.Error("expected distinct states")
	}
}

func TestError(t *testing.T) {
	t.Run("Is matches kind sentinel", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &Error{Kind: KindNotFound, Status: 404, Message: "x"})

		if !errors.Is(err, ErrNotFound) {
			t.Error("expected errors.Is to match ErrNotFound")
		}
		if errors.Is(err, ErrBadRequest) {
			t.Error("did not expect errors.Is to match ErrBadRequest")
		}
	})

	t.Run("As exposes fields", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &Error{Kind: KindRateLimit, Status: 429, RetryAfter: 2 * time.Second})

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatal("expected errors.As to succeed")
		}
		if apiErr.RetryAfter != 2*time.Second {
			t.Errorf("expected retry after 2s, got %v", apiErr.RetryAfter)
		}
	})

	t.Run("Auth errors unwrap to sentinel", func(t *testing.T) {
		err := NewAuthError(ErrMissingVerifier, "user %s", "u1")

		if !errors.Is(err, ErrMissingVerifier) {
			t.Error("expected errors.Is to match ErrMissingVerifier")
		}
		if !errors.Is(err, ErrAuthFailed) {
			t.Error("expected errors.Is to match ErrAuthFailed")
		}
		if !strings.Contains(err.Error(), "user u1") {
			t.Errorf("expected message in error text, got %q", err.Error())
		}
	})

	t.Run("Cause prefers message", func(t *testing.T) {
		err := &Error{Kind: KindBadRequest, Message: "x", Err: errors.New("y")}
		if err.Cause() != "x" {
			t.Errorf("expected cause x, got %q", err.Cause())
		}

		err = &Error{Kind: KindNetwork, Err: errors.New("dial failed")}
		if err.Cause() != "dial failed" {
			t.Errorf("expected cause dial failed, got %q", err.Cause())
		}
	})

	t.Run("Kind names", func(t *testing.T) {
		if KindUnknownAPI.String() != "UnknownApiError" {
			t.Errorf("unexpected kind name %s", KindUnknownAPI)
		}
		if ErrorKind(99).String() != "ErrorKind(99)" {
			t.Errorf("unexpected fallback name %s", ErrorKind(99))
		}
	})
}
