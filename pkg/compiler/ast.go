package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value. The set of
// variants is closed: NumberExpr, VariableExpr, BinaryExpr and CallExpr.
// Every sub-expression is owned by exactly one parent.
type Expr interface {
	exprNode()
	String() string
}

// NumberExpr is a numeric literal.
//
//	1.5
//	^^^  NumberExpr{Value: 1.5}
type NumberExpr struct {
	Value float64
}

func (*NumberExpr) exprNode() {}

// String prints the shortest plain decimal that parses back to the same
// float64, so the output can be fed to the lexer again. An overflowed literal
// is printed as a digit run past the float64 range, which lexes back to +Inf.
func (n *NumberExpr) String() string {
	if math.IsInf(n.Value, 1) {
		return "1" + strings.Repeat("0", 309)
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// VariableExpr is a read of a named parameter.
//
//	x + 1
//	^  VariableExpr{Name: "x"}
type VariableExpr struct {
	Name string
}

func (*VariableExpr) exprNode()        {}
func (v *VariableExpr) String() string { return v.Name }

// BinaryExpr represents LHS Op RHS.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | RHS
//	| Op
//	LHS
type BinaryExpr struct {
	Op  rune
	LHS Expr
	RHS Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%c %s %s)", b.Op, b.LHS, b.RHS)
}

// CallExpr represents Callee(Args...).
type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	var sb strings.Builder
	sb.WriteString("(call ")
	sb.WriteString(c.Callee)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

//  Definitions

// AnonExprName is the reserved name a bare top-level expression is wrapped
// under.
const AnonExprName = "__anon_expr"

// Prototype is a function's name and its ordered parameter names. Parameter
// names are not checked for uniqueness.
type Prototype struct {
	Name   string
	Params []string
}

// Arity returns the number of parameters.
func (p *Prototype) Arity() int { return len(p.Params) }

func (p *Prototype) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Params, " "))
}

// Function is a prototype plus a single body expression.
type Function struct {
	Proto *Prototype
	Body  Expr
}

func (f *Function) String() string {
	return fmt.Sprintf("(def %s %s)", f.Proto, f.Body)
}

// IsAnonymous reports whether f wraps a bare top-level expression.
func (f *Function) IsAnonymous() bool { return f.Proto.Name == AnonExprName }

// CheckOwnership walks e and returns an error if any node is reachable
// through more than one parent.
func CheckOwnership(e Expr) error {
	seen := make(map[Expr]bool)
	var walk func(Expr) error
	walk = func(e Expr) error {
		if e == nil {
			return fmt.Errorf("nil expression node")
		}
		if seen[e] {
			return fmt.Errorf("node %s has more than one parent", e)
		}
		seen[e] = true
		switch n := e.(type) {
		case *NumberExpr, *VariableExpr:
		case *BinaryExpr:
			if err := walk(n.LHS); err != nil {
				return err
			}
			return walk(n.RHS)
		case *CallExpr:
			for _, a := range n.Args {
				if err := walk(a); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown expression node %T", e)
		}
		return nil
	}
	return walk(e)
}
