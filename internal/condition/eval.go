package condition

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// EvalContext resolves field paths to values.
type EvalContext interface {
	Resolve(path []string) (interface{}, bool)
}

// Evaluate walks the AST and returns true/false or an error.
// AND and OR short-circuit.
func Evaluate(expr Expr, ctx EvalContext) (bool, error) {
	switch e := expr.(type) {
	case *LogicalExpr:
		left, err := Evaluate(e.Left, ctx)
		if err != nil {
			return false, err
		}
		switch e.Op {
		case "AND":
			if !left {
				return false, nil
			}
		case "OR":
			if left {
				return true, nil
			}
		default:
			return false, fmt.Errorf("unknown logical op %q", e.Op)
		}
		return Evaluate(e.Right, ctx)
	case *NotExpr:
		v, err := Evaluate(e.Expr, ctx)
		return !v && err == nil, err
	case *ComparisonExpr:
		return evalComparison(e, ctx)
	default:
		return false, fmt.Errorf("unknown expr type %T", expr)
	}
}

func evalComparison(e *ComparisonExpr, ctx EvalContext) (bool, error) {
	left, err := resolve(e.Left, ctx)
	if err != nil {
		return false, err
	}
	right, err := resolve(e.Right, ctx)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case OpEq:
		return equal(left, right), nil
	case OpNeq:
		return !equal(left, right), nil
	case OpGt, OpGte, OpLt, OpLte:
		return ordered(e.Op, left, right)
	case OpContains:
		return strings.Contains(fmt.Sprint(left), fmt.Sprint(right)), nil
	case OpMatches:
		re := e.re
		if re == nil {
			re, err = regexp.Compile(fmt.Sprint(right))
			if err != nil {
				return false, fmt.Errorf("matches: invalid regex %q: %w", right, err)
			}
		}
		return re.MatchString(fmt.Sprint(left)), nil
	default:
		return false, fmt.Errorf("unknown operator %q", e.Op)
	}
}

func resolve(op Operand, ctx EvalContext) (interface{}, error) {
	switch o := op.(type) {
	case *Literal:
		return o.Value, nil
	case *Field:
		v, ok := ctx.Resolve(o.Path)
		if !ok {
			return nil, fmt.Errorf("field %q not found", strings.Join(o.Path, "."))
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown operand type %T", op)
	}
}

// equal compares numbers by value, booleans by value and everything else
// by string form.
func equal(left, right interface{}) bool {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	lb, lok := left.(bool)
	rb, rok := right.(bool)
	if lok || rok {
		return lok && rok && lb == rb
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func ordered(op Operator, left, right interface{}) (bool, error) {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return false, fmt.Errorf("operator %s requires numeric operands, got %T and %T", op, left, right)
	}
	switch op {
	case OpGt:
		return lf > rf, nil
	case OpGte:
		return lf >= rf, nil
	case OpLt:
		return lf < rf, nil
	default:
		return lf <= rf, nil
	}
}
