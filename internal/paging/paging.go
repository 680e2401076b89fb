// Package paging implements the cursor machinery for seek pagination.
//
// A cursor token is an opaque base64 string encoding the sort-key value
// and the id of the last row of the previous page. Encoding both lets
// the next page seek strictly after that row even when the sort key has
// duplicates, so pages never repeat or skip rows.
package paging

import (
	"encoding/base64"
	"errors"
	"strings"
)

const (
	DefaultLimit = 6
	MaxLimit     = 48
)

var ErrInvalidCursor = errors.New("paging: invalid cursor")

// Page is one page of results plus the continuation token. NextCursor
// is empty on the final page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	Total      int64  `json:"total"`
}

// Cursor is the decoded form of a continuation token.
type Cursor struct {
	SortValue string
	ID        string
}

// Normalize clamps a requested page size into the allowed range.
func Normalize(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Encode builds an opaque token from a sort-key value and a row id.
func Encode(sortValue, id string) string {
	return base64.URLEncoding.EncodeToString([]byte(sortValue + "|" + id))
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	i := strings.LastIndexByte(string(raw), '|')
	if i < 0 {
		return Cursor{}, ErrInvalidCursor
	}
	c := Cursor{SortValue: string(raw[:i]), ID: string(raw[i+1:])}
	if c.ID == "" {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}

// Trim removes the lookahead row from a limit+1 fetch. When the extra
// row is present it is dropped from the page and its token becomes the
// next cursor; otherwise the cursor is empty and this was the last page.
func Trim[T any](items []T, limit int, cursorFor func(T) string) ([]T, string) {
	if len(items) <= limit {
		return items, ""
	}
	items = items[:limit]
	return items, cursorFor(items[limit-1])
}
