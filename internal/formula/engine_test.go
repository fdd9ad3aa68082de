package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbase/internal/models"
)

func numberColumn(name string) models.Column {
	return models.Column{Name: name, DataType: models.DataTypeNumber}
}

func textColumn(name string) models.Column {
	return models.Column{Name: name, DataType: models.DataTypeText}
}

func TestEvaluateSum(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Price"), numberColumn("Tax")}
	data := models.RecordData{"Price": 10.0, "Tax": 2.0}

	result, err := engine.Evaluate("SUM({Price}, {Tax})", data, columns)
	require.NoError(t, err)
	assert.Equal(t, 12.0, result)
}

func TestEvaluateMissingReferenceIsZero(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Evaluate("{missingCol} + 1", models.RecordData{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result)
}

func TestEvaluateArithmetic(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Qty"), numberColumn("Price")}
	data := models.RecordData{"Qty": 3.0, "Price": 4.5}

	result, err := engine.Evaluate("{Qty} * {Price}", data, columns)
	require.NoError(t, err)
	assert.Equal(t, 13.5, result)

	// Division by zero resolves to zero instead of failing the cell.
	result, err = engine.Evaluate("{Price} / 0", data, columns)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result)
}

func TestEvaluateStringFunctions(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{textColumn("First"), textColumn("Last")}
	data := models.RecordData{"First": "Ada", "Last": "Lovelace"}

	result, err := engine.Evaluate(`CONCAT({First}, " ", {Last})`, data, columns)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", result)

	result, err = engine.Evaluate("UPPER({First})", data, columns)
	require.NoError(t, err)
	assert.Equal(t, "ADA", result)

	result, err = engine.Evaluate("LEN({Last})", data, columns)
	require.NoError(t, err)
	assert.Equal(t, 8.0, result)
}

func TestEvaluateConditional(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Qty")}

	result, err := engine.Evaluate(`IF({Qty} > 5, "big", "small")`, models.RecordData{"Qty": 10.0}, columns)
	require.NoError(t, err)
	assert.Equal(t, "big", result)

	result, err = engine.Evaluate(`IF({Qty} > 5, "big", "small")`, models.RecordData{"Qty": 2.0}, columns)
	require.NoError(t, err)
	assert.Equal(t, "small", result)
}

func TestEvaluateRound(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Price")}

	result, err := engine.Evaluate("ROUND({Price} * 1.1, 2)", models.RecordData{"Price": 10.0}, columns)
	require.NoError(t, err)
	assert.Equal(t, 11.0, result)
}

func TestEvaluateDateReference(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{{Name: "Due", DataType: models.DataTypeDate}}
	data := models.RecordData{"Due": "2024-01-15"}

	result, err := engine.Evaluate("{Due}", data, columns)
	require.NoError(t, err)

	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, float64(want), result)
}

func TestEvaluateCheckboxReference(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{{Name: "Done", DataType: models.DataTypeCheckbox}}

	result, err := engine.Evaluate("{Done}", models.RecordData{"Done": true}, columns)
	require.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestEvaluateEmptyValueIsZero(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Price")}

	result, err := engine.Evaluate("{Price} + 5", models.RecordData{}, columns)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestEvaluatePlainString(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Evaluate(`"hello"`, models.RecordData{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestExtractDependencies(t *testing.T) {
	deps := ExtractDependencies("SUM({Price}, {Tax}) + {Price}")
	assert.Equal(t, []string{"Price", "Tax"}, deps)

	assert.Empty(t, ExtractDependencies("1 + 2"))
}

func TestValidate(t *testing.T) {
	engine := NewEngine(nil)
	columns := []models.Column{numberColumn("Price")}

	result := engine.Validate("SUM({Price}, 1)", columns)
	assert.True(t, result.IsValid)

	result = engine.Validate("SUM({Missing})", columns)
	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "Missing")

	result = engine.Validate("NOPE({Price})", columns)
	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "NOPE")

	result = engine.Validate("{Price", columns)
	assert.False(t, result.IsValid)

	result = engine.Validate("   ", columns)
	assert.False(t, result.IsValid)
}

func TestRegistryOrderIsStable(t *testing.T) {
	r := DefaultRegistry()
	names := r.Names()
	require.NotEmpty(t, names)
	assert.Equal(t, "SUM", names[0])

	// Case-insensitive lookup.
	assert.True(t, r.Has("sum"))
	assert.True(t, r.Has("Concat"))
	assert.False(t, r.Has("bogus"))
}

func TestEvalExpr(t *testing.T) {
	v, err := evalExpr("2 + 3 * 4")
	require.NoError(t, err)
	assert.Equal(t, 14.0, v)

	v, err = evalExpr("(2 + 3) * 4")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	v, err = evalExpr("10 % 3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = evalExpr("1 < 2 && 3 > 2")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = evalExpr("-5 + 3")
	require.NoError(t, err)
	assert.Equal(t, -2.0, v)

	_, err = evalExpr("2 +")
	assert.Error(t, err)
}
