package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNested(t *testing.T) {
	data := map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{
				"c": float64(5),
			},
		},
	}

	value, ok := Resolve(data, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, float64(5), value)
}

func TestResolveArrayIndex(t *testing.T) {
	data := map[string]interface{}{
		"images": []interface{}{"first.jpg", "second.jpg"},
	}

	value, ok := Resolve(data, "images.0")
	require.True(t, ok)
	assert.Equal(t, "first.jpg", value)

	value, ok = Resolve(data, "images.1")
	require.True(t, ok)
	assert.Equal(t, "second.jpg", value)

	_, ok = Resolve(data, "images.2")
	assert.False(t, ok)

	_, ok = Resolve(data, "images.notanumber")
	assert.False(t, ok)
}

func TestResolveMissingKey(t *testing.T) {
	data := map[string]interface{}{"a": float64(1)}

	_, ok := Resolve(data, "a.b")
	assert.False(t, ok, "descending through a scalar must be absent, not an error")

	_, ok = Resolve(data, "missing")
	assert.False(t, ok)

	_, ok = Resolve(data, "")
	assert.False(t, ok)
}

func TestResolveDeepMixed(t *testing.T) {
	data := map[string]interface{}{
		"variants": []interface{}{
			map[string]interface{}{"price": "9.99"},
			map[string]interface{}{"price": "19.99"},
		},
	}

	value, ok := Resolve(data, "variants.0.price")
	require.True(t, ok)
	assert.Equal(t, "9.99", value)

	// No partial result when a later segment misses.
	_, ok = Resolve(data, "variants.0.color")
	assert.False(t, ok)
}
