package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
)

// errorEnvelope is the body Spotify sends with every non-2xx response.
type errorEnvelope struct {
	Error *struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify maps a non-2xx response onto its [shared.ErrorKind], carrying the remote message.
func classify(resp *http.Response, payload []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Error == nil || env.Error.Status == 0 {
		return &shared.Error{
			Kind:    shared.KindSchemaDecode,
			Status:  resp.StatusCode,
			Message: "failed to decode error response",
			Err:     err,
		}
	}

	e := &shared.Error{Status: resp.StatusCode, Message: env.Error.Message}
	switch resp.StatusCode {
	case http.StatusBadRequest:
		e.Kind = shared.KindBadRequest
	case http.StatusUnauthorized:
		e.Kind = shared.KindUnauthorized
	case http.StatusForbidden:
		e.Kind = shared.KindForbidden
	case http.StatusNotFound:
		e.Kind = shared.KindNotFound
	case http.StatusTooManyRequests:
		e.Kind = shared.KindRateLimit
		e.RetryAfter = RetryAfter(resp.Header.Get("Retry-After"))
	default:
		e.Kind = shared.KindUnknownAPI
	}
	return e
}

// maxRetryAfterSeconds is the largest wait a [time.Duration] can hold.
const maxRetryAfterSeconds = float64(math.MaxInt64) / float64(time.Second)

// RetryAfter parses a Retry-After header holding a number of seconds, fractions allowed.
// A missing, negative or non-numeric value yields [DefaultRetryAfter].
func RetryAfter(header string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || secs > maxRetryAfterSeconds {
		return DefaultRetryAfter
	}
	return time.Duration(secs * float64(time.Second))
}
