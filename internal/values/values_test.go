package values

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	n, ok := ToNumber("42.5")
	require.True(t, ok)
	assert.Equal(t, 42.5, n)

	n, ok = ToNumber(" 7 ")
	require.True(t, ok)
	assert.Equal(t, 7.0, n)

	n, ok = ToNumber(true)
	require.True(t, ok)
	assert.Equal(t, 1.0, n)

	_, ok = ToNumber("abc")
	assert.False(t, ok)

	_, ok = ToNumber(nil)
	assert.False(t, ok)
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool("true"))
	assert.True(t, ToBool("1"))
	assert.False(t, ToBool("false"))
	assert.False(t, ToBool("0"))
	assert.False(t, ToBool(""))
	assert.True(t, ToBool("yes"))
	assert.True(t, ToBool(1.0))
	assert.False(t, ToBool(0.0))
	assert.False(t, ToBool(nil))
}

func TestToTimeLayouts(t *testing.T) {
	parsed, ok := ToTime("2024-01-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), parsed)

	parsed, ok = ToTime("2024-01-15T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, parsed.Hour())

	_, ok = ToTime("not a date")
	assert.False(t, ok)
}

func TestToTimeExcelSerial(t *testing.T) {
	// Serial 44000 is 2020-06-18.
	parsed, ok := ToTime(44000.0)
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, time.June, 18, 0, 0, 0, 0, time.UTC), parsed)

	// Numeric strings go through the same heuristic.
	parsed, ok = ToTime("44000")
	require.True(t, ok)
	assert.Equal(t, 2020, parsed.Year())

	// Small numbers are literals, not 1900-era dates.
	_, ok = ToTime(5.0)
	assert.False(t, ok)

	// The window is exclusive on both ends.
	_, ok = ToTime(25569.0)
	assert.False(t, ok)
	parsed, ok = ToTime(25570.0)
	require.True(t, ok)
	assert.Equal(t, time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC), parsed)

	_, ok = ToTime(100000.0)
	assert.False(t, ok)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty([]any{}))
	assert.True(t, IsEmpty(map[string]any{}))
	assert.False(t, IsEmpty(0.0))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty("x"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "12.5", Stringify(12.5))
	assert.Equal(t, "12", Stringify(12.0))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, `["a","b"]`, Stringify([]any{"a", "b"}))
}
