package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached API response.
type Key struct {
	// Path is the endpoint path (e.g. "/seasons/190/events")
	Path string

	// Query holds the request's query parameters
	Query url.Values
}

// String generates a deterministic cache key.
// Format: re:path:query1=val1:query2=val2 with query parameters sorted,
// so the same request always maps to the same key regardless of the
// order parameters were added.
//
// Example:
//
//	re:seasons/190/events:page=2:per_page=250
func (k Key) String() string {
	parts := []string{"re"}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
