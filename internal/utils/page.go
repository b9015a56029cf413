package utils

import (
	"encoding/base64"
	"fmt"
)

const (
	// DefaultPageSize is used when a request does not ask for a size.
	DefaultPageSize = 100
	// MaxPageSize caps every page.
	MaxPageSize = 1000
)

// PageRequest asks for First items after the opaque cursor After.
type PageRequest struct {
	First int    `json:"first" query:"first"`
	After string `json:"after" query:"after"`
}

// Page is one page of a cursor paginated list.
type Page[T any] struct {
	Items       []T    `json:"items"`
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
	TotalCount  int64  `json:"totalCount"`
}

// Limit returns the clamped page size.
func (r PageRequest) Limit() int {
	switch {
	case r.First <= 0:
		return DefaultPageSize
	case r.First > MaxPageSize:
		return MaxPageSize
	}
	return r.First
}

// AfterKey decodes the cursor into the sort key it was made from.
func (r PageRequest) AfterKey() (string, error) {
	if r.After == "" {
		return "", nil
	}
	key, err := base64.RawURLEncoding.DecodeString(r.After)
	if err != nil {
		return "", fmt.Errorf("invalid cursor %q", r.After)
	}
	return string(key), nil
}

// EncodeCursor makes an opaque cursor from a sort key.
func EncodeCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// NewPage builds a page from up to limit+1 fetched items. The extra item
// only signals that another page exists.
func NewPage[T any](items []T, limit int, total int64, key func(T) string) Page[T] {
	page := Page[T]{Items: items, TotalCount: total}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasNextPage = true
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if n := len(page.Items); n > 0 {
		page.EndCursor = EncodeCursor(key(page.Items[n-1]))
	}
	return page
}
