package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gridbase/internal/models"
	"gridbase/internal/values"
)

var refPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Engine evaluates formula strings by textual substitution: column
// references are replaced with typed literals, registered functions are
// replaced with their results, and whatever remains is resolved as a
// number, an arithmetic expression, or a plain string.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Registry exposes the function table, e.g. for formula validation.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Evaluate computes one formula against one record. It never panics past
// this boundary: any failure comes back as (nil, err) and the caller
// decides what to do with the cell.
func (e *Engine) Evaluate(formulaStr string, data models.RecordData, columns []models.Column) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("formula evaluation: %v", r)
		}
	}()

	processed := e.substituteReferences(formulaStr, data, columns)
	processed = e.applyFunctions(processed)
	return resolveResult(processed), nil
}

// substituteReferences replaces every {name} with a literal: the record's
// value cast per the column's storage bucket, or 0 when the column or the
// value is missing.
func (e *Engine) substituteReferences(formulaStr string, data models.RecordData, columns []models.Column) string {
	return refPattern.ReplaceAllStringFunc(formulaStr, func(ref string) string {
		name := ref[1 : len(ref)-1]
		col := findColumn(columns, name)
		if col == nil {
			return "0"
		}
		value, ok := data[name]
		if !ok || value == nil {
			return "0"
		}
		switch models.StorageTypeFor(col.DataType) {
		case models.StorageNumber:
			if n, ok := values.ToNumber(value); ok {
				return formatNumber(n)
			}
			return "0"
		case models.StorageDate:
			if t, ok := values.ToTime(value); ok {
				return strconv.FormatInt(t.UnixMilli(), 10)
			}
			return "0"
		case models.StorageBoolean:
			return strconv.FormatBool(values.ToBool(value))
		default:
			return `"` + values.Stringify(value) + `"`
		}
	})
}

// applyFunctions runs one substitution pass per registered function, in
// registration order.
func (e *Engine) applyFunctions(processed string) string {
	for _, name := range e.registry.Names() {
		fn, _ := e.registry.Lookup(name)
		pattern := regexp.MustCompile(`(?i)\b` + name + `\s*\(([^)]*)\)`)
		processed = pattern.ReplaceAllStringFunc(processed, func(call string) string {
			open := strings.IndexByte(call, '(')
			rawArgs := call[open+1 : len(call)-1]
			return stringifyResult(fn(parseArgs(rawArgs)))
		})
	}
	return processed
}

// parseArgs splits a call's argument text on commas (quotes respected) and
// coerces each piece: quoted text stays a string, numeric-looking text
// becomes a number, and leftover arithmetic is evaluated.
func parseArgs(raw string) []any {
	parts := splitArgs(raw)
	args := make([]any, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if isQuoted(trimmed) {
			args = append(args, trimmed[1:len(trimmed)-1])
			continue
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			args = append(args, f)
			continue
		}
		if trimmed == "true" || trimmed == "false" {
			args = append(args, trimmed == "true")
			continue
		}
		if strings.ContainsAny(trimmed, "+-*/%<>=&|!") {
			if v, err := evalExpr(trimmed); err == nil {
				args = append(args, v)
				continue
			}
		}
		args = append(args, trimmed)
	}
	return args
}

func splitArgs(raw string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	var quoteChar byte
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case (ch == '"' || ch == '\'') && !inQuotes:
			inQuotes = true
			quoteChar = ch
			current.WriteByte(ch)
		case ch == quoteChar && inQuotes:
			inQuotes = false
			current.WriteByte(ch)
		case ch == ',' && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')
}

// stringifyResult renders a function result back into the formula text.
// String-producing functions wrap their result in quotes themselves.
func stringifyResult(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// resolveResult turns the fully substituted text into the cell value:
// quoted text is a string, numeric text a number, arithmetic is evaluated,
// anything else comes back verbatim.
func resolveResult(processed string) any {
	if strings.Contains(processed, `"`) {
		if strings.HasPrefix(processed, `"`) && strings.HasSuffix(processed, `"`) && len(processed) >= 2 {
			return processed[1 : len(processed)-1]
		}
		return processed
	}
	trimmed := strings.TrimSpace(processed)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if trimmed == "true" || trimmed == "false" {
		return trimmed == "true"
	}
	if v, err := evalExpr(trimmed); err == nil {
		return v
	}
	return processed
}

func findColumn(columns []models.Column, name string) *models.Column {
	for i := range columns {
		if columns[i].Name == name {
			return &columns[i]
		}
	}
	return nil
}

// ExtractDependencies returns the distinct column names referenced with a
// {name} placeholder, in order of first appearance.
func ExtractDependencies(formulaStr string) []string {
	var deps []string
	seen := make(map[string]bool)
	for _, match := range refPattern.FindAllStringSubmatch(formulaStr, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	return deps
}

// ValidationResult reports formula validation errors, if any.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

var callPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Validate checks balanced braces, that every referenced column exists and
// that every call targets a known function. Argument counts are not
// type-checked.
func (e *Engine) Validate(formulaStr string, columns []models.Column) ValidationResult {
	var errs []string

	if strings.TrimSpace(formulaStr) == "" {
		return ValidationResult{IsValid: false, Errors: []string{"Formula cannot be empty"}}
	}

	if strings.Count(formulaStr, "{") != strings.Count(formulaStr, "}") {
		errs = append(errs, "Unbalanced braces in formula")
	}

	for _, name := range ExtractDependencies(formulaStr) {
		if findColumn(columns, name) == nil {
			errs = append(errs, fmt.Sprintf("Column '%s' not found", name))
		}
	}

	for _, match := range callPattern.FindAllStringSubmatch(formulaStr, -1) {
		if !e.registry.Has(match[1]) {
			errs = append(errs, fmt.Sprintf("Unknown function '%s'", strings.ToUpper(match[1])))
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
