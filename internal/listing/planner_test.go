package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbase/internal/models"
)

func record(data models.RecordData) models.Record {
	return models.Record{Data: data}
}

func names(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for i := range records {
		out = append(out, records[i].Data["Name"].(string))
	}
	return out
}

func TestSortNumbersAscEmptiesLast(t *testing.T) {
	columns := []models.Column{{Name: "Age", DataType: models.DataTypeNumber}, {Name: "Name", DataType: models.DataTypeText}}
	records := []models.Record{
		record(models.RecordData{"Name": "b", "Age": 30.0}),
		record(models.RecordData{"Name": "c", "Age": nil}),
		record(models.RecordData{"Name": "a", "Age": 20.0}),
	}

	SortRecords(records, []SortRule{{Field: "Age", Direction: "asc"}}, columns)
	assert.Equal(t, []string{"a", "b", "c"}, names(records))
}

func TestSortDescKeepsEmptiesLast(t *testing.T) {
	columns := []models.Column{{Name: "Age", DataType: models.DataTypeNumber}, {Name: "Name", DataType: models.DataTypeText}}
	records := []models.Record{
		record(models.RecordData{"Name": "a", "Age": 20.0}),
		record(models.RecordData{"Name": "c"}),
		record(models.RecordData{"Name": "b", "Age": 30.0}),
	}

	SortRecords(records, []SortRule{{Field: "Age", Direction: "desc"}}, columns)
	assert.Equal(t, []string{"b", "a", "c"}, names(records))
}

func TestSortNumericStringsCompareNumerically(t *testing.T) {
	columns := []models.Column{{Name: "Code", DataType: models.DataTypeText}, {Name: "Name", DataType: models.DataTypeText}}
	records := []models.Record{
		record(models.RecordData{"Name": "b", "Code": "10"}),
		record(models.RecordData{"Name": "a", "Code": "9"}),
	}

	SortRecords(records, []SortRule{{Field: "Code", Direction: "asc"}}, columns)
	assert.Equal(t, []string{"a", "b"}, names(records))
}

func TestSortDates(t *testing.T) {
	columns := []models.Column{{Name: "Due", DataType: models.DataTypeDate}, {Name: "Name", DataType: models.DataTypeText}}
	records := []models.Record{
		record(models.RecordData{"Name": "b", "Due": "2024-06-01"}),
		record(models.RecordData{"Name": "a", "Due": "2024-01-15"}),
		record(models.RecordData{"Name": "c", "Due": "garbage"}),
	}

	SortRecords(records, []SortRule{{Field: "Due", Direction: "asc"}}, columns)
	assert.Equal(t, []string{"a", "b", "c"}, names(records))
}

func TestSortMultiRule(t *testing.T) {
	columns := []models.Column{
		{Name: "Group", DataType: models.DataTypeText},
		{Name: "Age", DataType: models.DataTypeNumber},
		{Name: "Name", DataType: models.DataTypeText},
	}
	records := []models.Record{
		record(models.RecordData{"Name": "c", "Group": "x", "Age": 9.0}),
		record(models.RecordData{"Name": "a", "Group": "w", "Age": 30.0}),
		record(models.RecordData{"Name": "b", "Group": "x", "Age": 5.0}),
	}

	rules := []SortRule{
		{Field: "Group", Direction: "asc"},
		{Field: "Age", Direction: "asc"},
	}
	SortRecords(records, rules, columns)
	assert.Equal(t, []string{"a", "b", "c"}, names(records))
}

func TestFilterOperators(t *testing.T) {
	data := models.RecordData{"Name": "Widget", "Price": 25.0, "Tags": "a,b"}

	cases := []struct {
		rule FilterRule
		want bool
	}{
		{FilterRule{Field: "Name", Operator: "equals", Value: "Widget"}, true},
		{FilterRule{Field: "Name", Operator: "not_equals", Value: "Gadget"}, true},
		{FilterRule{Field: "Name", Operator: "contains", Value: "idge"}, true},
		{FilterRule{Field: "Name", Operator: "contains", Value: "IDGE"}, true},
		{FilterRule{Field: "Name", Operator: "not_contains", Value: "xyz"}, true},
		{FilterRule{Field: "Name", Operator: "starts_with", Value: "wid"}, true},
		{FilterRule{Field: "Name", Operator: "ends_with", Value: "get"}, true},
		{FilterRule{Field: "Price", Operator: "gt", Value: 20}, true},
		{FilterRule{Field: "Price", Operator: "gte", Value: 25}, true},
		{FilterRule{Field: "Price", Operator: "lt", Value: 30}, true},
		{FilterRule{Field: "Price", Operator: "lte", Value: 24}, false},
		{FilterRule{Field: "Price", Operator: "equals", Value: "25"}, true},
		{FilterRule{Field: "Name", Operator: "in", Value: []any{"Widget", "Gadget"}}, true},
		{FilterRule{Field: "Name", Operator: "in", Value: "Widget, Gadget"}, true},
		{FilterRule{Field: "Name", Operator: "not_in", Value: []any{"Gadget"}}, true},
		{FilterRule{Field: "Missing", Operator: "is_empty"}, true},
		{FilterRule{Field: "Name", Operator: "is_not_empty"}, true},
		{FilterRule{Field: "Missing", Operator: "equals", Value: ""}, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesFilters(data, []FilterRule{tc.rule}),
			"operator %s value %v", tc.rule.Operator, tc.rule.Value)
	}
}

func TestFiltersCombineWithAnd(t *testing.T) {
	data := models.RecordData{"Name": "Widget", "Price": 25.0}

	rules := []FilterRule{
		{Field: "Name", Operator: "contains", Value: "Wid"},
		{Field: "Price", Operator: "gt", Value: 20},
	}
	assert.True(t, MatchesFilters(data, rules))

	rules[1].Value = 30
	assert.False(t, MatchesFilters(data, rules))
}

func TestMatchesSearch(t *testing.T) {
	data := models.RecordData{"Name": "Widget", "Price": 25.0}

	assert.True(t, MatchesSearch(data, "widg"))
	assert.True(t, MatchesSearch(data, "25"))
	assert.False(t, MatchesSearch(data, "gadget"))
	assert.True(t, MatchesSearch(data, ""))
}

func TestComparatorUnknownFieldFallsBackToText(t *testing.T) {
	records := []models.Record{
		record(models.RecordData{"Name": "b"}),
		record(models.RecordData{"Name": "a"}),
	}
	SortRecords(records, []SortRule{{Field: "Name", Direction: "asc"}}, nil)
	require.Equal(t, []string{"a", "b"}, names(records))
}
