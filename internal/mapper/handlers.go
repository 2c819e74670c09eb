package mapper

import "strings"

// HandlerFunc reshapes a value structurally before any transform runs.
// Handlers are bound to a source path in the vendor config.
type HandlerFunc func(interface{}) interface{}

var handlers = map[string]HandlerFunc{
	// split_list turns a delimited string ("a, b; c") into a list of
	// trimmed, non-empty tokens. Lists pass through unchanged.
	"split_list": func(v interface{}) interface{} {
		if list, ok := v.([]interface{}); ok {
			return list
		}
		return SplitList(Stringify(v))
	},

	// stock_status maps an availability flag to the fixed status tokens.
	"stock_status": func(v interface{}) interface{} {
		if Truthy(v) {
			return StatusInStock
		}
		return StatusOutOfStock
	},

	// first_element collapses a list to its first entry, the common shape
	// for vendor image and variant arrays.
	"first_element": func(v interface{}) interface{} {
		if list, ok := v.([]interface{}); ok {
			if len(list) == 0 {
				return ""
			}
			return list[0]
		}
		return v
	},
}

// ApplyHandler runs a named handler. Unknown names pass the value through,
// mirroring the transform engine's permissive default.
func ApplyHandler(value interface{}, name string) interface{} {
	if fn, ok := handlers[name]; ok {
		return fn(value)
	}
	return value
}

// KnownHandler reports whether a handler name is registered.
func KnownHandler(name string) bool {
	_, ok := handlers[name]
	return ok
}

// SplitList splits on the common multi-value delimiters (comma, semicolon,
// pipe), trims each token and drops empties.
func SplitList(s string) []string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
