package mapper

import (
	"strconv"
	"strings"
)

// Resolve walks a dot-separated path into decoded JSON data. Keys descend
// into objects by name and into arrays by numeric index. A miss at any step
// returns (nil, false); absence is not an error and no partial result is
// ever returned.
func Resolve(data interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	current := data
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[key]
			if !ok {
				return nil, false
			}
			current = value
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			// Scalar intermediate, nothing to descend into.
			return nil, false
		}
	}
	return current, true
}
