// Package expr implements the default condition and value expression
// grammar used by the velocity renderer.
//
// Expressions arrive with all template placeholders already substituted,
// so there are no variables: operands are numbers, quoted strings, the
// literals true and false, and bare words, which are treated as strings.
// Supported operators, loosest first:
//
//	||  &&  == !=  < > <= >=  + -  * / %  ! (unary) - (unary)
//
// and, or, not, eq, ne, lt, gt, le and ge are accepted as word aliases.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Evaluator evaluates expressions with the default grammar. The zero value
// is ready to use.
type Evaluator struct{}

// New creates an Evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate parses and evaluates condition, reducing the result to a boolean
// with IsTruthy. Malformed expressions and invalid operations are errors.
func (e *Evaluator) Evaluate(condition string) (bool, error) {
	value, err := e.EvaluateValue(condition)
	if err != nil {
		return false, err
	}
	return IsTruthy(value), nil
}

// EvaluateValue parses and evaluates expr. The result is a bool, int64,
// float64 or string.
func (e *Evaluator) EvaluateValue(expr string) (interface{}, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	node, err := Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", expr, err)
	}
	value, err := node.Evaluate()
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", expr, err)
	}
	return value, nil
}

// EvaluateBinaryOperation evaluates a binary operation between two values
func EvaluateBinaryOperation(left interface{}, operator string, right interface{}) (interface{}, error) {
	switch operator {
	case "+":
		return evaluateAddition(left, right)
	case "-", "*", "/", "%":
		return evaluateArithmetic(left, operator, right)
	case "==":
		return evaluateEquals(left, right), nil
	case "!=":
		return !evaluateEquals(left, right), nil
	case "<", ">", "<=", ">=":
		return evaluateOrdering(left, operator, right)
	case "&&":
		return IsTruthy(left) && IsTruthy(right), nil
	case "||":
		return IsTruthy(left) || IsTruthy(right), nil
	default:
		return nil, fmt.Errorf("unknown binary operator: %s", operator)
	}
}

func evaluateAddition(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toNumber(left)
	rightNum, rightOk := toNumber(right)
	if leftOk && rightOk {
		return evaluateArithmetic(leftNum, "+", rightNum)
	}

	// Handle string concatenation
	_, leftStr := left.(string)
	_, rightStr := right.(string)
	if leftStr || rightStr {
		return formatValue(left) + formatValue(right), nil
	}
	return nil, fmt.Errorf("cannot add %q and %q", formatValue(left), formatValue(right))
}

func evaluateArithmetic(left interface{}, operator string, right interface{}) (interface{}, error) {
	leftNum, leftOk := toNumber(left)
	rightNum, rightOk := toNumber(right)
	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot apply %s to %q and %q", operator, formatValue(left), formatValue(right))
	}

	li, leftInt := leftNum.(int64)
	ri, rightInt := rightNum.(int64)
	if leftInt && rightInt {
		switch operator {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			if li%ri == 0 {
				return li / ri, nil
			}
			return float64(li) / float64(ri), nil
		case "%":
			if ri == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return li % ri, nil
		}
	}

	li, leftInt = leftNum.(int64)
	ri, rightInt = rightNum.(int64)
	if leftInt && rightInt {
		switch operator {
		case "<":
			return li < ri, nil
		case ">":
			return li > ri, nil
		case "<=":
			return li <= ri, nil
		default:
			return li >= ri, nil
		}
	}

	lf, rf := toFloat(leftNum), toFloat(rightNum)
	switch operator {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return math.Mod(lf, rf), nil
	default:
		return nil, fmt.Errorf("unknown arithmetic operator: %s", operator)
	}
}

// evaluateEquals compares numerically when both sides are numbers or
// numeric strings, and textually otherwise.
func evaluateEquals(left, right interface{}) bool {
	if leftNum, ok := toNumber(left); ok {
		if rightNum, ok := toNumber(right); ok {
			if li, ok := leftNum.(int64); ok {
				if ri, ok := rightNum.(int64); ok {
					return li == ri
				}
			}
			return toFloat(leftNum) == toFloat(rightNum)
		}
	}
	return formatValue(left) == formatValue(right)
}

func evaluateOrdering(left interface{}, operator string, right interface{}) (interface{}, error) {
	leftNum, leftOk := toNumber(left)
	rightNum, rightOk := toNumber(right)
	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot compare %q %s %q", formatValue(left), operator, formatValue(right))
	}

	li, leftInt := leftNum.(int64)
	ri, rightInt := rightNum.(int64)
	if leftInt && rightInt {
		switch operator {
		case "<":
			return li < ri, nil
		case ">":
			return li > ri, nil
		case "<=":
			return li <= ri, nil
		default:
			return li >= ri, nil
		}
	}

	lf, rf := toFloat(leftNum), toFloat(rightNum)
	switch operator {
	case "<":
		return lf < rf, nil
	case ">":
		return lf > rf, nil
	case "<=":
		return lf <= rf, nil
	default:
		return lf >= rf, nil
	}
}

func evaluateUnaryMinus(operand interface{}) (interface{}, error) {
	num, ok := toNumber(operand)
	if !ok {
		return nil, fmt.Errorf("cannot apply unary minus to %q", formatValue(operand))
	}
	if i, ok := num.(int64); ok {
		return -i, nil
	}
	return -toFloat(num), nil
}

// toNumber converts numbers and numeric strings to int64 or float64.
func toNumber(val interface{}) (interface{}, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return v, true
	case int:
		return int64(v), true
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if isNumeric(strings.TrimPrefix(s, "-")) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return nil, false
}

func toFloat(num interface{}) float64 {
	switch v := num.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return math.NaN()
	}
}

// IsTruthy reduces an expression result to a boolean. Strings are true
// when non-empty, except for unresolved ${...} placeholders.
func IsTruthy(val interface{}) bool {
	switch v := val.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		if v == "" {
			return false
		}
		return !(strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}"))
	default:
		return true
	}
}

func formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
