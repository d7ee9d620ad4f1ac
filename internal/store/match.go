package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Matches reports whether doc satisfies every equality in q.
func Matches(doc Document, q Query) bool {
	for k, want := range q {
		got, ok := doc[k]
		if !ok {
			if want != nil {
				return false
			}
			continue
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

// Compare orders two JSON values. Nil sorts first, then numbers, strings
// and booleans; anything else falls back to its printed form.
func Compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case nil:
		return 0
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// SortDocs orders docs in place. Ties keep their current order.
func SortDocs(docs []Document, s *Sort) {
	if s == nil || s.Field == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		c := Compare(docs[i][s.Field], docs[j][s.Field])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

// Page applies skip and limit to an already ordered result set.
func Page(docs []Document, skip, limit int) []Document {
	if skip > 0 {
		if skip >= len(docs) {
			return []Document{}
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// Clone deep-copies a document so callers never share nested maps with a
// backend.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return cloneValue(doc).(Document)
}

// SameDocs reports whether two result sets are identical, element by
// element.
func SameDocs(a, b []Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

func equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if rank(a) != rank(b) {
		return false
	}
	switch a.(type) {
	case nil, float64, string, bool:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case uint64:
		return float64(x)
	}
	return v
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	}
	return 4
}
