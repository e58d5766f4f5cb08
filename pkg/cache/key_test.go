package cache

import (
	"net/url"
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "path only",
			key:  Key{Path: "/seasons"},
			want: "re:seasons",
		},
		{
			name: "path with query",
			key: Key{
				Path:  "/seasons/190/events",
				Query: url.Values{"page": []string{"2"}, "per_page": []string{"250"}},
			},
			want: "re:seasons/190/events:page=2:per_page=250",
		},
		{
			name: "trailing slash normalized",
			key:  Key{Path: "/events/51234/divisions/"},
			want: "re:events/51234/divisions",
		},
		{
			name: "empty key",
			key:  Key{},
			want: "re",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyStringDeterministic(t *testing.T) {
	// Insertion order must not matter.
	a := Key{Path: "/matches", Query: url.Values{}}
	a.Query.Set("scored", "1")
	a.Query.Set("page", "3")
	a.Query.Set("per_page", "250")

	b := Key{Path: "/matches", Query: url.Values{}}
	b.Query.Set("per_page", "250")
	b.Query.Set("page", "3")
	b.Query.Set("scored", "1")

	if a.String() != b.String() {
		t.Errorf("Same parameters produced different keys: %q vs %q", a.String(), b.String())
	}
}
