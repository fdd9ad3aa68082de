// Package listing builds type-aware comparators and predicates over the
// open attribute maps records are stored as. Sorting and filtering cannot
// be pushed into SQL because cell types live in column metadata, not in
// the store.
package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gridbase/internal/models"
	"gridbase/internal/values"
)

const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// SortRule orders one field; rules apply in the order given, first rule
// primary.
type SortRule struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// FilterRule is one operator/value predicate over a field. Rules combine
// with logical AND.
type FilterRule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Comparator compares two records on one field. Records with an empty or
// unparseable value sort after all records with a usable value, regardless
// of direction.
func Comparator(field, direction, dataType string) func(a, b models.RecordData) int {
	collator := collate.New(language.Und)
	desc := strings.EqualFold(direction, DirectionDesc)

	return func(a, b models.RecordData) int {
		av, bv := a[field], b[field]
		aOK, aKey := sortKey(av, dataType)
		bOK, bKey := sortKey(bv, dataType)

		// Presence wins before direction: empties go last either way.
		if !aOK && !bOK {
			return 0
		}
		if !aOK {
			return 1
		}
		if !bOK {
			return -1
		}

		var cmp int
		switch k := aKey.(type) {
		case float64:
			bNum := bKey.(float64)
			switch {
			case k < bNum:
				cmp = -1
			case k > bNum:
				cmp = 1
			}
		case string:
			cmp = collator.CompareString(k, bKey.(string))
		}
		if desc {
			cmp = -cmp
		}
		return cmp
	}
}

// sortKey reduces a cell to a comparable key for the column's dataType.
// The bool result is false for values that must sort last.
func sortKey(v any, dataType string) (bool, any) {
	if values.IsEmpty(v) {
		return false, nil
	}
	switch models.StorageTypeFor(dataType) {
	case models.StorageNumber:
		n, ok := values.ToNumber(v)
		if !ok {
			return false, nil
		}
		return true, n
	case models.StorageDate:
		t, ok := values.ToTime(v)
		if !ok {
			return false, nil
		}
		return true, float64(t.UnixMilli())
	case models.StorageBoolean:
		if values.ToBool(v) {
			return true, float64(1)
		}
		return true, float64(0)
	default:
		// Numbers-in-strings compare numerically when the value parses;
		// mixed pairs fall back to text below.
		if n, ok := values.ToNumber(v); ok {
			return true, n
		}
		return true, values.Stringify(v)
	}
}

// SortRecords applies the sort rules in order using the table's columns to
// pick each field's dataType. The sort is stable so later rules keep the
// relative order set by earlier ones.
func SortRecords(records []models.Record, rules []SortRule, columns []models.Column) {
	if len(rules) == 0 {
		return
	}
	cmps := make([]func(a, b models.RecordData) int, 0, len(rules))
	for _, rule := range rules {
		cmps = append(cmps, Comparator(rule.Field, rule.Direction, dataTypeOf(columns, rule.Field)))
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, cmp := range cmps {
			if c := cmp(records[i].Data, records[j].Data); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func dataTypeOf(columns []models.Column, field string) string {
	for i := range columns {
		if columns[i].Name == field {
			return columns[i].DataType
		}
	}
	return models.DataTypeText
}

// MatchesFilters evaluates every rule against the record and ANDs them.
func MatchesFilters(data models.RecordData, rules []FilterRule) bool {
	for _, rule := range rules {
		if !matchesRule(data, rule) {
			return false
		}
	}
	return true
}

func matchesRule(data models.RecordData, rule FilterRule) bool {
	cell := data[rule.Field]

	switch rule.Operator {
	case "is_empty", "is_null":
		return values.IsEmpty(cell)
	case "is_not_empty", "is_not_null":
		return !values.IsEmpty(cell)
	}

	// Remaining operators never match an empty cell.
	if values.IsEmpty(cell) {
		return false
	}

	cellStr := values.Stringify(cell)
	wantStr := values.Stringify(rule.Value)

	switch rule.Operator {
	case "equals", "=", "==":
		return looseEquals(cell, rule.Value)
	case "not_equals", "!=":
		return !looseEquals(cell, rule.Value)
	case "contains":
		return strings.Contains(strings.ToLower(cellStr), strings.ToLower(wantStr))
	case "not_contains":
		return !strings.Contains(strings.ToLower(cellStr), strings.ToLower(wantStr))
	case "starts_with":
		return strings.HasPrefix(strings.ToLower(cellStr), strings.ToLower(wantStr))
	case "ends_with":
		return strings.HasSuffix(strings.ToLower(cellStr), strings.ToLower(wantStr))
	case "in":
		return containsValue(rule.Value, cell)
	case "not_in":
		return !containsValue(rule.Value, cell)
	case "gt", ">", "greater_than":
		return numericCompare(cell, rule.Value) > 0
	case "gte", ">=", "greater_than_or_equal":
		return numericCompare(cell, rule.Value) >= 0
	case "lt", "<", "less_than":
		return numericCompare(cell, rule.Value) < 0
	case "lte", "<=", "less_than_or_equal":
		return numericCompare(cell, rule.Value) <= 0
	default:
		return false
	}
}

func looseEquals(a, b any) bool {
	if an, ok := values.ToNumber(a); ok {
		if bn, ok := values.ToNumber(b); ok {
			return an == bn
		}
	}
	return values.Stringify(a) == values.Stringify(b)
}

// containsValue handles both JSON arrays and comma-separated strings as
// the operand of in / not_in.
func containsValue(operand, cell any) bool {
	switch list := operand.(type) {
	case []any:
		for _, item := range list {
			if looseEquals(cell, item) {
				return true
			}
		}
	case string:
		for _, item := range strings.Split(list, ",") {
			if looseEquals(cell, strings.TrimSpace(item)) {
				return true
			}
		}
	default:
		return looseEquals(cell, operand)
	}
	return false
}

func numericCompare(a, b any) int {
	an, aok := values.ToNumber(a)
	bn, bok := values.ToNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	if at, ok := values.ToTime(a); ok {
		if bt, ok := values.ToTime(b); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(values.Stringify(a), values.Stringify(b))
}

// MatchesSearch reports whether any field of the record contains the query
// as a case-insensitive substring.
func MatchesSearch(data models.RecordData, query string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	for _, v := range data {
		if strings.Contains(strings.ToLower(values.Stringify(v)), needle) {
			return true
		}
	}
	return false
}
