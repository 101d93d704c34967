package cache

import (
	"fmt"
	"sort"
	"strings"
)

// MakeKey derives the cache key of an operation call.
// Positional args keep call order; kwargs are sorted by name so equal calls collide.
// The layout is op, then "_" and the args joined by "_", then "_" and the k_v pairs joined by "_";
// each group is omitted when empty.
func MakeKey(op string, args []any, kwargs map[string]any) string {
	var b strings.Builder
	b.WriteString(op)

	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		b.WriteString("_")
		b.WriteString(strings.Join(parts, "_"))
	}

	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for k := range kwargs {
			names = append(names, k)
		}
		sort.Strings(names)

		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = k + "_" + fmt.Sprint(kwargs[k])
		}
		b.WriteString("_")
		b.WriteString(strings.Join(parts, "_"))
	}

	return b.String()
}
