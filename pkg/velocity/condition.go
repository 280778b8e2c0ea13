package velocity

import "github.com/benjaminschreck/go-velocity/pkg/velocity/expr"

// ConditionEvaluator decides #if and #elseif conditions. The condition has
// already had its placeholders substituted. An error means the condition
// could not be evaluated; the renderer treats the branch as false.
type ConditionEvaluator interface {
	Evaluate(condition string) (bool, error)
}

// ValueEvaluator is implemented by evaluators that can also compute the
// value of an expression for #set. Results are bool, int64, float64 or
// string.
type ValueEvaluator interface {
	EvaluateValue(expr string) (interface{}, error)
}

// ConditionFunc adapts a function to ConditionEvaluator.
type ConditionFunc func(condition string) (bool, error)

func (f ConditionFunc) Evaluate(condition string) (bool, error) {
	return f(condition)
}

// DefaultEvaluator returns the evaluator used when none is configured.
func DefaultEvaluator() ConditionEvaluator {
	return expr.New()
}

// valueFromResult converts an expression result into a Value.
func valueFromResult(result interface{}) (Value, bool) {
	switch v := result.(type) {
	case bool:
		return BoolValue(v), true
	case int64:
		return IntValue(v), true
	case float64:
		return FloatValue(v), true
	case string:
		return StringValue(v), true
	default:
		return Value{}, false
	}
}
