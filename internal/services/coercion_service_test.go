package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbase/internal/models"
)

func TestCoerceValueNumber(t *testing.T) {
	v, ok := CoerceValue("42", models.DataTypeNumber)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = CoerceValue(true, models.DataTypeNumber)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	// Values that do not fit stay as they were.
	v, ok = CoerceValue("abc", models.DataTypeNumber)
	assert.False(t, ok)
	assert.Equal(t, "abc", v)
}

func TestCoerceValueDate(t *testing.T) {
	// Date targets keep only the calendar portion.
	v, ok := CoerceValue("2024-01-15T10:30:00Z", models.DataTypeDate)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15", v)

	// Excel serials inside the window become dates.
	v, ok = CoerceValue(44000.0, models.DataTypeDate)
	require.True(t, ok)
	assert.Equal(t, "2020-06-18", v)

	// Small numbers do not.
	_, ok = CoerceValue(5.0, models.DataTypeDate)
	assert.False(t, ok)

	_, ok = CoerceValue("yesterday-ish", models.DataTypeDate)
	assert.False(t, ok)
}

func TestCoerceValueDatetime(t *testing.T) {
	// Datetime targets keep the full instant.
	v, ok := CoerceValue("2024-01-15", models.DataTypeDatetime)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15T00:00:00Z", v)

	v, ok = CoerceValue("2024-01-15T10:30:00Z", models.DataTypeDatetime)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15T10:30:00Z", v)
}

func TestCoerceValueYear(t *testing.T) {
	// Year targets extract the year from date input.
	v, ok := CoerceValue("2020-05-01", models.DataTypeYear)
	require.True(t, ok)
	assert.Equal(t, 2020.0, v)

	// Plain numbers pass through as numbers.
	v, ok = CoerceValue("1999", models.DataTypeYear)
	require.True(t, ok)
	assert.Equal(t, 1999.0, v)

	_, ok = CoerceValue("not a year", models.DataTypeYear)
	assert.False(t, ok)
}

func TestCoerceValueCheckbox(t *testing.T) {
	v, ok := CoerceValue("true", models.DataTypeCheckbox)
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = CoerceValue("0", models.DataTypeCheckbox)
	require.True(t, ok)
	assert.Equal(t, false, v)

	// Checkbox coercion always succeeds on non-empty input.
	v, ok = CoerceValue("anything", models.DataTypeCheckbox)
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestCoerceValueJSON(t *testing.T) {
	v, ok := CoerceValue(`["a","b"]`, models.DataTypeMultiSelect)
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, v)

	v, ok = CoerceValue(map[string]any{"k": "v"}, models.DataTypeJSON)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"k": "v"}, v)

	_, ok = CoerceValue("not json", models.DataTypeJSON)
	assert.False(t, ok)

	// A bare scalar is valid JSON but not a composite.
	_, ok = CoerceValue("42", models.DataTypeJSON)
	assert.False(t, ok)
}

func TestCoerceValueString(t *testing.T) {
	v, ok := CoerceValue(42.0, models.DataTypeText)
	require.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = CoerceValue(true, models.DataTypeText)
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestCoerceValueEmptyPassesThrough(t *testing.T) {
	v, ok := CoerceValue(nil, models.DataTypeNumber)
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = CoerceValue("", models.DataTypeDate)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}
