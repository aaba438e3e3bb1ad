package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotx/internal/shared"
)

const (
	MinLimit = 1
	MaxLimit = 50
)

// Options holds the optional query parameters accepted across endpoints.
//
// Unset fields are omitted from the query string. Endpoints ignore parameters they do not recognize,
// so a single struct serves every option shape.
type Options struct {
	Market          string   // ISO 3166-1 alpha-2 country code
	Locale          string   // e.g. es_MX
	Limit           *int     // 1..50
	Offset          *int     // index of the first item
	IncludeGroups   []string // album, single, appears_on, compilation
	AdditionalTypes []string // track, episode
	Fields          []string
	Before          string // cursor; exclusive with After
	After           string // cursor; exclusive with Before
	TimeRange       string // short_term, medium_term, long_term
	IncludeExternal string // audio
}

// Int returns a pointer to n, for [Options.Limit] and [Options.Offset].
func Int(n int) *int { return &n }

// Page returns options for one page of results.
func Page(limit, offset int) *Options {
	return &Options{Limit: Int(limit), Offset: Int(offset)}
}

// Validate checks ranges and mutually exclusive fields.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && (*o.Limit < MinLimit || *o.Limit > MaxLimit) {
		return fmt.Errorf("%w: limit must be between %d and %d, got %d", shared.ErrInvalidArgument, MinLimit, MaxLimit, *o.Limit)
	}
	if o.Offset != nil && *o.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", shared.ErrInvalidArgument, *o.Offset)
	}
	if o.Before != "" && o.After != "" {
		return fmt.Errorf("%w: before and after are mutually exclusive", shared.ErrInvalidArgument)
	}
	switch o.TimeRange {
	case "", "short_term", "medium_term", "long_term":
	default:
		return fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, o.TimeRange)
	}
	return nil
}

// Values flattens the options into query parameters.
func (o *Options) Values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}

	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}

	set("market", o.Market)
	set("locale", o.Locale)
	if o.Limit != nil {
		v.Set("limit", strconv.Itoa(*o.Limit))
	}
	if o.Offset != nil {
		v.Set("offset", strconv.Itoa(*o.Offset))
	}
	set("include_groups", JoinList(o.IncludeGroups))
	set("additional_types", JoinList(o.AdditionalTypes))
	set("fields", JoinList(o.Fields))
	set("before", o.Before)
	set("after", o.After)
	set("time_range", o.TimeRange)
	set("include_external", o.IncludeExternal)
	return v
}

// JoinList trims each element and joins them with a comma, dropping empty elements.
// The comma is percent-encoded once when the query string is built.
func JoinList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}
