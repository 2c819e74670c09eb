package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericStripsJunk(t *testing.T) {
	assert.Equal(t, 1234.56, ApplyTransform("$1,234.56abc", "numeric"))
	assert.Equal(t, float64(0), ApplyTransform("", "numeric"))
	assert.Equal(t, float64(0), ApplyTransform("not a price", "numeric"))
	assert.Equal(t, 9.99, ApplyTransform(9.99, "numeric"))
	assert.Equal(t, -5.0, ApplyTransform("-5", "numeric"))
}

func TestDecimalFormatting(t *testing.T) {
	assert.Equal(t, "3.10", ApplyTransform("3.1", "decimal"))
	assert.Equal(t, "0.00", ApplyTransform("garbage", "decimal"))
	assert.Equal(t, "1234.56", ApplyTransform("$1,234.559", "decimal"))

	// decimal output is already two-decimal formatted, so a second pass is
	// a no-op.
	once := ApplyTransform("3.1", "decimal")
	assert.Equal(t, once, ApplyTransform(once, "decimal"))
}

func TestCaseTransformsIdempotent(t *testing.T) {
	assert.Equal(t, "WIDGET", ApplyTransform("Widget", "uppercase"))
	assert.Equal(t, "widget", ApplyTransform("Widget", "lowercase"))

	upper := ApplyTransform("MiXeD", "uppercase")
	assert.Equal(t, upper, ApplyTransform(upper, "uppercase"))
}

func TestIntegerTruncates(t *testing.T) {
	assert.Equal(t, 9, ApplyTransform("9.99", "integer"))
	assert.Equal(t, 0, ApplyTransform("junk", "integer"))
	assert.Equal(t, 1234, ApplyTransform("$1,234.56", "integer"))
}

func TestBooleanStatusTokens(t *testing.T) {
	assert.Equal(t, StatusInStock, ApplyTransform(true, "boolean"))
	assert.Equal(t, StatusInStock, ApplyTransform("yes", "boolean"))
	assert.Equal(t, StatusInStock, ApplyTransform(float64(3), "boolean"))
	assert.Equal(t, StatusOutOfStock, ApplyTransform(false, "boolean"))
	assert.Equal(t, StatusOutOfStock, ApplyTransform("0", "boolean"))
	assert.Equal(t, StatusOutOfStock, ApplyTransform("", "boolean"))
	assert.Equal(t, StatusOutOfStock, ApplyTransform("No", "boolean"))
}

func TestUnknownTransformPassesThrough(t *testing.T) {
	assert.Equal(t, "unchanged", ApplyTransform("unchanged", "frobnicate"))
	assert.False(t, KnownTransform("frobnicate"))
	assert.True(t, KnownTransform("numeric"))
}

func TestStringifyFloats(t *testing.T) {
	assert.Equal(t, "9.99", Stringify(9.99))
	assert.Equal(t, "100", Stringify(float64(100)))
	assert.Equal(t, "", Stringify(nil))
}
