package formula

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"

	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

// placeholderPattern matches {token} where token has no braces
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Placeholders returns the distinct placeholder tokens of a formula in order
// of first appearance.
func Placeholders(formula string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(formula, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Unresolved returns placeholder tokens that are not declared parents
func Unresolved(formula string, parents []string) []string {
	declared := make(map[string]bool, len(parents))
	for _, p := range parents {
		declared[p] = true
	}
	var out []string
	for _, token := range Placeholders(formula) {
		if !declared[token] {
			out = append(out, token)
		}
	}
	return out
}

// substitute replaces every {parentId} placeholder with the literal encoding
// of the parent's current value. Replacement happens in a single pass over
// the template, so substituted text is never scanned again.
func substitute(formula string, parents []string, values map[string]interface{}) string {
	literals := make(map[string]string, len(parents))
	for _, id := range parents {
		literals[id] = literal(values[id])
	}
	return placeholderPattern.ReplaceAllStringFunc(formula, func(match string) string {
		if lit, ok := literals[match[1:len(match)-1]]; ok {
			return lit
		}
		return match
	})
}

// literal encodes a value as an expression literal. Absent values become "",
// lists and other composites are rendered to their display string.
func literal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return `""`
	case bool:
		return strconv.FormatBool(x)
	case int:
		return number(float64(x))
	case int64:
		return number(float64(x))
	case float64:
		return number(x)
	case string:
		return quote(x)
	default:
		return quote(utils.ToDisplayString(x))
	}
}

func number(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return `""`
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	// integers past int64 range must lex as floats
	if math.Abs(f) >= 1<<63 {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	}
	if f < 0 {
		return "(" + s + ")"
	}
	return s
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
