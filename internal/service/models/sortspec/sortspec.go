package sortspec

import (
	"slices"
	"strings"

	"github.com/corray333/littlelemon/internal/service/svcerr"
)

// Key is one element of an ordering specification.
type Key struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

func (k Key) String() string {
	if k.Desc {
		return "-" + k.Field
	}

	return k.Field
}

// Parse parses a comma-separated list of field names, each optionally prefixed
// with "-" for descending order. Empty input yields no keys.
func Parse(spec string, allowed []string) ([]Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var keys []Key
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key := Key{Field: part}
		if strings.HasPrefix(part, "-") {
			key = Key{Field: strings.TrimPrefix(part, "-"), Desc: true}
		}
		if !slices.Contains(allowed, key.Field) {
			return nil, svcerr.Validation("unknown sort field %q", key.Field).
				WithFields(map[string]string{"sort": "allowed fields: " + strings.Join(allowed, ", ")})
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// Join renders keys back into their textual form.
func Join(keys []Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}

	return strings.Join(parts, ",")
}

// Comparators maps a field name to a three-way comparison of two items.
type Comparators[T any] map[string]func(a, b T) int

// SortStable orders items by keys applied left to right. Items equal under every
// key keep their original relative order.
func SortStable[T any](items []T, keys []Key, cmps Comparators[T]) {
	if len(keys) == 0 {
		return
	}

	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range keys {
			cmp, ok := cmps[k.Field]
			if !ok {
				continue
			}
			c := cmp(a, b)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}

		return 0
	})
}
