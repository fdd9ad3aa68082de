package formula

import (
	"math"
	"strconv"
	"strings"
)

// DefaultRegistry builds the stock function table. CONCAT-family results are
// quote-wrapped so the engine recognizes them as strings after substitution.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.register("SUM", sumFunc)
	r.register("ADD", sumFunc)
	r.register("SUBTRACT", func(args []any) any {
		return numOr(arg(args, 0), 0) - numOr(arg(args, 1), 0)
	})
	r.register("MULTIPLY", func(args []any) any {
		product := 1.0
		for _, a := range args {
			product *= numOr(a, 1)
		}
		return product
	})
	r.register("DIVIDE", func(args []any) any {
		b := numOr(arg(args, 1), 1)
		if b == 0 {
			return 0.0
		}
		return numOr(arg(args, 0), 0) / b
	})
	r.register("MOD", func(args []any) any {
		b := numOr(arg(args, 1), 1)
		if b == 0 {
			return 0.0
		}
		return math.Mod(numOr(arg(args, 0), 0), b)
	})
	r.register("POWER", func(args []any) any {
		return math.Pow(numOr(arg(args, 0), 0), numOr(arg(args, 1), 1))
	})
	r.register("SQRT", func(args []any) any {
		return math.Sqrt(math.Max(0, numOr(arg(args, 0), 0)))
	})
	r.register("AVG", func(args []any) any {
		sum, count := 0.0, 0
		for _, a := range args {
			if n, ok := toNumber(a); ok {
				sum += n
				count++
			}
		}
		if count == 0 {
			return 0.0
		}
		return sum / float64(count)
	})
	r.register("MIN", func(args []any) any {
		min := math.Inf(1)
		for _, a := range args {
			n := math.Inf(1)
			if v, ok := toNumber(a); ok {
				n = v
			}
			if n < min {
				min = n
			}
		}
		return min
	})
	r.register("MAX", func(args []any) any {
		max := math.Inf(-1)
		for _, a := range args {
			n := math.Inf(-1)
			if v, ok := toNumber(a); ok {
				n = v
			}
			if n > max {
				max = n
			}
		}
		return max
	})
	r.register("COUNT", func(args []any) any {
		count := 0
		for _, a := range args {
			if a != nil && argString(a) != "" {
				count++
			}
		}
		return float64(count)
	})
	r.register("IF", func(args []any) any {
		if truthy(arg(args, 0)) {
			return arg(args, 1)
		}
		return arg(args, 2)
	})
	r.register("AND", func(args []any) any {
		for _, a := range args {
			if !truthy(a) {
				return false
			}
		}
		return true
	})
	r.register("OR", func(args []any) any {
		for _, a := range args {
			if truthy(a) {
				return true
			}
		}
		return false
	})
	r.register("NOT", func(args []any) any {
		return !truthy(arg(args, 0))
	})
	r.register("CONCAT", concatFunc)
	r.register("CONCATENATE", concatFunc)
	r.register("UPPER", func(args []any) any {
		return strings.ToUpper(argString(arg(args, 0)))
	})
	r.register("LOWER", func(args []any) any {
		return strings.ToLower(argString(arg(args, 0)))
	})
	r.register("TRIM", func(args []any) any {
		return `"` + strings.TrimSpace(argString(arg(args, 0))) + `"`
	})
	r.register("LEN", func(args []any) any {
		return float64(len(argString(arg(args, 0))))
	})
	r.register("ROUND", func(args []any) any {
		return roundTo(numOr(arg(args, 0), 0), int(numOr(arg(args, 1), 0)))
	})
	r.register("ABS", func(args []any) any {
		return math.Abs(numOr(arg(args, 0), 0))
	})
	r.register("CEIL", func(args []any) any {
		return math.Ceil(numOr(arg(args, 0), 0))
	})
	r.register("FLOOR", func(args []any) any {
		return math.Floor(numOr(arg(args, 0), 0))
	})

	return r
}

func sumFunc(args []any) any {
	sum := 0.0
	for _, a := range args {
		sum += numOr(a, 0)
	}
	return sum
}

func concatFunc(args []any) any {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(argString(a))
	}
	return `"` + sb.String() + `"`
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// toNumber parses v as a number if it looks numeric.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
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

// numOr returns v as a number, or fallback when v is not numeric.
func numOr(v any, fallback float64) float64 {
	if n, ok := toNumber(v); ok {
		return n
	}
	return fallback
}

func argString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return formatNumber(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return true
	}
}

func roundTo(num float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(num*pow) / pow
}

// formatNumber renders a float the way record values are displayed: no
// exponent, no trailing zeros.
func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
