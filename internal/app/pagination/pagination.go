// Package pagination implements cursor-based windowing over totally-ordered
// sequences. Callers receive an opaque continuation token and hand it back
// to resume; they never parse or construct tokens themselves.
package pagination

import (
	"sort"
	"time"
)

const (
	// DefaultLimit is the page size applied when the caller passes none.
	DefaultLimit = 20
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

const tokenTimeLayout = "20060102150405.000000000"

// Token builds the ordering key for an element from its creation time and
// id. The fixed-width timestamp makes keys compare lexicographically in
// chronological order; the id tie-break keeps keys unique even when two
// elements share a timestamp, so "strictly after the cursor" is never
// ambiguous.
func Token(at time.Time, id string) string {
	return at.UTC().Format(tokenTimeLayout) + "/" + id
}

// ClampLimit normalizes a requested page size to the allowed range.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Paginate returns a window of up to limit elements from items, ordered
// descending by key, together with the continuation token for the next
// window.
//
// An empty cursor starts at the first element. Otherwise the cursor is the
// key of the last element the caller already saw and the window starts
// strictly after it; a cursor matching no element falls back to the
// beginning rather than failing. The returned token is empty when the page
// is short, meaning no more data exists.
func Paginate[T any](items []T, key func(T) string, limit int, cursor string) ([]T, string) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})

	start := 0
	if cursor != "" {
		for i := range sorted {
			if key(sorted[i]) == cursor {
				start = i + 1
				break
			}
		}
	}

	if limit <= 0 || start >= len(sorted) {
		return []T{}, ""
	}

	end := start + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	page := sorted[start:end]

	next := ""
	if len(page) == limit {
		next = key(page[len(page)-1])
	}
	return page, next
}
