package velocity

import (
	"strconv"
	"strings"
)

// Operators that mark a #set value as an expression to evaluate. The
// arithmetic ones need surrounding spaces so that values such as
// "2024-01-01" or "a/b" stay plain strings.
var (
	expressionOperators = []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">"}
	arithmeticOperators = []string{" + ", " - ", " * ", " / ", " % "}
)

// coerceSetValue converts the substituted right-hand side of a #set into a
// Value, trying in order: boolean literal, JSON array, JSON object,
// expression, quoted string, integer, float. Anything else is kept as the
// raw string, so coercion never fails.
func coerceSetValue(raw string, evaluator ConditionEvaluator) Value {
	s := strings.TrimSpace(raw)

	switch s {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}

	if strings.HasPrefix(s, "[") {
		if v, err := ValueFromJSON([]byte(s)); err == nil && v.Kind() == KindArray {
			return v
		}
	}
	if strings.HasPrefix(s, "{") {
		if v, err := ValueFromJSON([]byte(s)); err == nil && v.Kind() == KindObject {
			return v
		}
	}

	if ve, ok := evaluator.(ValueEvaluator); ok && looksLikeExpression(s) {
		if result, err := ve.EvaluateValue(s); err == nil {
			if v, ok := valueFromResult(result); ok {
				return v
			}
		}
	}

	if unquoted, ok := unquote(s); ok {
		return StringValue(unquoted)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isDecimal(s) {
		return FloatValue(f)
	}
	return StringValue(s)
}

func looksLikeExpression(s string) bool {
	for _, op := range expressionOperators {
		if strings.Contains(s, op) {
			return true
		}
	}
	for _, op := range arithmeticOperators {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// isDecimal rejects forms ParseFloat accepts but templates do not mean as
// numbers, such as "Inf", "NaN" or hex floats.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return false
		}
	}
	return true
}
