//go:build go1.18

package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

// FuzzGetOrLoad guards against panics and checks that a fresh GetOrLoad
// always returns what its loader produced, for arbitrary string keys.
func FuzzGetOrLoad(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](CacheConfig{TTL: 1800 * time.Second, MaxSize: 16}, Options[string, string]{})
		got, err := c.GetOrLoad(context.Background(), k, constLoader(v))
		if err != nil || got != v {
			t.Fatalf("GetOrLoad(%q): got=%q err=%v want=%q", k, got, err, v)
		}
		// Second call must be a hit returning the same value.
		got2, err := c.GetOrLoad(context.Background(), k, constLoader("other"))
		if err != nil || got2 != v {
			t.Fatalf("second GetOrLoad(%q): got=%q err=%v want=%q", k, got2, err, v)
		}
		if st := c.Stats(); st.Size > 1 {
			t.Fatalf("single-key cache grew to size %d", st.Size)
		}
	})
}
