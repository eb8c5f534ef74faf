// Package condition implements the small boolean expression language used to
// select input comments, e.g. `subreddit == "AskReddit" AND NOT neutral == 1`.
package condition

import "regexp"

// Operator is a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
)

// Expr is the common interface for all AST nodes.
type Expr interface {
	exprNode()
}

// LogicalExpr joins two expressions with AND or OR.
type LogicalExpr struct {
	Op    string // "AND" | "OR"
	Left  Expr
	Right Expr
}

// NotExpr negates an expression.
type NotExpr struct {
	Expr Expr
}

// ComparisonExpr compares two operands.
type ComparisonExpr struct {
	Left  Operand
	Op    Operator
	Right Operand

	re *regexp.Regexp // compiled pattern for OpMatches with a literal right side
}

func (*LogicalExpr) exprNode()    {}
func (*NotExpr) exprNode()        {}
func (*ComparisonExpr) exprNode() {}

// Operand is either a literal or a column reference.
type Operand interface {
	operandNode()
}

// Literal holds a parsed constant: string, float64 or bool.
type Literal struct {
	Value interface{}
}

// Field references a column by name. Dotted names are split into Path.
type Field struct {
	Path []string
}

func (*Literal) operandNode() {}
func (*Field) operandNode()   {}

// Fields returns every column path referenced by expr.
func Fields(expr Expr) [][]string {
	var out [][]string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *LogicalExpr:
			walk(n.Left)
			walk(n.Right)
		case *NotExpr:
			walk(n.Expr)
		case *ComparisonExpr:
			for _, op := range []Operand{n.Left, n.Right} {
				if f, ok := op.(*Field); ok {
					out = append(out, f.Path)
				}
			}
		}
	}
	walk(expr)
	return out
}
