// Package values holds the shared coercion helpers for record cell values.
// Cells arrive as whatever JSON produced (float64, string, bool, maps,
// slices) and every engine component needs the same view of them.
package values

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Excel serial dates count days from the 1900 epoch. Serials inside
// (excelSerialMin, excelSerialMax) are treated as dates; anything else is a
// plain number. 25569 is the serial of 1970-01-01.
const (
	excelSerialMin = 25569
	excelSerialMax = 100000
)

var excelEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ToNumber parses v as a number if it looks numeric.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToBool coerces v the way checkbox cells are written: the strings "true"
// and "1" are true, other strings follow emptiness, numbers follow zero.
func ToBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if b == "true" || b == "1" {
			return true
		}
		if b == "false" || b == "0" || b == "" {
			return false
		}
		return true
	case float64:
		return b != 0
	case int:
		return b != 0
	case nil:
		return false
	default:
		return true
	}
}

// ToTime parses v as a point in time. Strings are tried against the known
// layouts; numbers are only accepted as Excel serial dates inside the
// heuristic window (a serial of 5 is a literal number, not 1900-01-04).
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelSerialToTime(f)
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		if f, ok := ToNumber(v); ok {
			return excelSerialToTime(f)
		}
		return time.Time{}, false
	}
}

func excelSerialToTime(serial float64) (time.Time, bool) {
	if serial <= excelSerialMin || serial >= excelSerialMax {
		return time.Time{}, false
	}
	// Serial 1 is 1900-01-01 and Excel counts the phantom 1900-02-29,
	// which nets out to epoch + (serial - 2) days.
	return excelEpoch.AddDate(0, 0, int(serial)-2), true
}

// IsEmpty reports whether a cell counts as having no value.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// Stringify renders a cell value as text. Composite values fall back to
// their JSON form.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
