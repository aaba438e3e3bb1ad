package shared

import (
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed           = fmt.Errorf("authentication failed")
	ErrNotAuthenticated     = fmt.Errorf("not authenticated")
	ErrTokenExpired         = fmt.Errorf("access token expired")
	ErrRefreshFailed        = fmt.Errorf("token refresh failed")
	ErrMissingVerifier      = fmt.Errorf("missing PKCE verifier for user")
	ErrInvalidTokenResponse = fmt.Errorf("invalid token response shape")
	ErrTokenEndpoint        = fmt.Errorf("spotify token API error")
	ErrMalformedToken       = fmt.Errorf("invalid token format in cache")
	ErrTimeout              = fmt.Errorf("operation timed out")

	// Request engine errors, one per [ErrorKind]
	ErrNetwork      = fmt.Errorf("network request failed")
	ErrJSONParse    = fmt.Errorf("response is not valid JSON")
	ErrSchemaDecode = fmt.Errorf("response does not match expected shape")
	ErrBadRequest   = fmt.Errorf("bad request")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrForbidden    = fmt.Errorf("forbidden")
	ErrNotFound     = fmt.Errorf("not found")
	ErrRateLimited  = fmt.Errorf("rate limited")
	ErrUnknownAPI   = fmt.Errorf("unknown API error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrorKind tags an [Error] with the failure class it belongs to.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindJSONParse
	KindSchemaDecode
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimit
	KindUnknownAPI
	KindAuth
)

var kindNames = map[ErrorKind]string{
	KindNetwork:      "NetworkError",
	KindJSONParse:    "JsonParseError",
	KindSchemaDecode: "SchemaDecodeError",
	KindBadRequest:   "BadRequestError",
	KindUnauthorized: "UnauthorizedError",
	KindForbidden:    "ForbiddenError",
	KindNotFound:     "NotFoundError",
	KindRateLimit:    "RateLimitError",
	KindUnknownAPI:   "UnknownApiError",
	KindAuth:         "AuthError",
}

var kindSentinels = map[ErrorKind]error{
	KindNetwork:      ErrNetwork,
	KindJSONParse:    ErrJSONParse,
	KindSchemaDecode: ErrSchemaDecode,
	KindBadRequest:   ErrBadRequest,
	KindUnauthorized: ErrUnauthorized,
	KindForbidden:    ErrForbidden,
	KindNotFound:     ErrNotFound,
	KindRateLimit:    ErrRateLimited,
	KindUnknownAPI:   ErrUnknownAPI,
	KindAuth:         ErrAuthFailed,
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single failure value returned by the request engine and the auth strategies.
//
// Match a class with [errors.Is] against the kind sentinels (e.g. [ErrRateLimited]) or
// extract fields with [errors.As].
type Error struct {
	Kind       ErrorKind
	Status     int           // HTTP status, when a response was received
	URL        string        // attempted URL, set for network failures
	Message    string        // remote or descriptive cause
	RetryAfter time.Duration // server-requested wait, set for KindRateLimit
	Err        error         // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " %s", e.URL)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Kind == KindRateLimit {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Cause returns the remote message when present, or the underlying error text.
func (e *Error) Cause() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// NewAuthError builds a [KindAuth] error wrapping one of the auth sentinels.
func NewAuthError(sentinel error, format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...), Err: sentinel}
}
