package mapper

import (
	"fmt"
	"strconv"
	"strings"
)

// Stock status tokens produced by the boolean transform and the
// stock_status handler.
const (
	StatusInStock    = "instock"
	StatusOutOfStock = "outofstock"
)

// TransformFunc converts one extracted value. Transforms never fail:
// malformed numeric input yields 0.
type TransformFunc func(interface{}) interface{}

var transforms = map[string]TransformFunc{
	"uppercase": func(v interface{}) interface{} { return strings.ToUpper(Stringify(v)) },
	"lowercase": func(v interface{}) interface{} { return strings.ToLower(Stringify(v)) },
	"numeric":   func(v interface{}) interface{} { return ToNumber(v) },
	"decimal":   func(v interface{}) interface{} { return fmt.Sprintf("%.2f", ToNumber(v)) },
	"integer":   func(v interface{}) interface{} { return int(ToNumber(v)) },
	"boolean": func(v interface{}) interface{} {
		if Truthy(v) {
			return StatusInStock
		}
		return StatusOutOfStock
	},
}

// ApplyTransform applies a named transform. An unknown name is a permissive
// pass-through, not an error; the registry warns about unknown names at
// config load instead.
func ApplyTransform(value interface{}, name string) interface{} {
	if fn, ok := transforms[name]; ok {
		return fn(value)
	}
	return value
}

// KnownTransform reports whether a transform name is registered.
func KnownTransform(name string) bool {
	_, ok := transforms[name]
	return ok
}

// Stringify renders any scalar as a string. Floats keep their shortest
// representation so "9.99" does not become "9.990000".
func Stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// ToNumber parses a value to float64, stripping everything that is not a
// digit, decimal point or leading minus first ("$1,234.56abc" -> 1234.56).
// Anything unparseable yields 0.
func ToNumber(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case bool:
		if value {
			return 1
		}
		return 0
	}

	var b strings.Builder
	for i, r := range Stringify(v) {
		if (r >= '0' && r <= '9') || r == '.' || (r == '-' && i == 0) {
			b.WriteRune(r)
		}
	}

	parsed, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return parsed
}

// Truthy decides whether a value means "available". Empty strings, zeros and
// the usual negative tokens are falsy; everything else is truthy.
func Truthy(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case float32:
		return value != 0
	case int:
		return value != 0
	case int64:
		return value != 0
	}

	switch strings.ToLower(strings.TrimSpace(Stringify(v))) {
	case "", "0", "false", "no", "n", "out of stock", "outofstock":
		return false
	}
	return true
}
