package filter

import (
	"strconv"
	"strings"

	"github.com/roach88/tcstore/internal/value"
)

// Resolve walks a dotted path through nested objects. A numeric segment
// indexes into an array. The second result is false when any segment is
// missing; a key holding null resolves to value.Null{} with ok=true.
func Resolve(doc value.Value, path string) (value.Value, bool) {
	if path == "" {
		return nil, false
	}
	return resolve(doc, strings.Split(path, "."))
}

func resolve(doc value.Value, segments []string) (value.Value, bool) {
	cur := doc
	for _, seg := range segments {
		switch node := cur.(type) {
		case value.Object:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case value.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
