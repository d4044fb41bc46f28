package expr

import (
	"fmt"
	"strings"
)

// ============================================================
// Equation
// ============================================================

// Equation is an equality LHS = RHS. It is itself an Expr, so an equality can
// be handed anywhere an expression is expected.
type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) Simplify() Expr     { return Eq(e.LHS.Simplify(), e.RHS.Simplify()) }
func (e *Equation) Eval() (*Num, bool) { return nil, false }
func (e *Equation) String() string     { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string      { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

func (e *Equation) Equal(other Expr) bool {
	o, ok := other.(*Equation)
	return ok && e.LHS.Equal(o.LHS) && e.RHS.Equal(o.RHS)
}

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr { return SubOf(e.LHS, e.RHS) }

func (e *Equation) exprType() string { return "eq" }
func (e *Equation) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "eq", "lhs": e.LHS.toJSON(), "rhs": e.RHS.toJSON()}
}

// ============================================================
// Rel — strict and non-strict inequalities
// ============================================================

type Rel struct {
	Op       string
	LHS, RHS Expr
}

var relLaTeX = map[string]string{
	">":  ">",
	">=": "\\geq",
	"<":  "<",
	"<=": "\\leq",
	"!=": "\\neq",
}

func relOf(op string, lhs, rhs Expr) *Rel { return &Rel{Op: op, LHS: lhs, RHS: rhs} }

func Gt(lhs, rhs Expr) *Rel { return relOf(">", lhs, rhs) }
func Ge(lhs, rhs Expr) *Rel { return relOf(">=", lhs, rhs) }
func Lt(lhs, rhs Expr) *Rel { return relOf("<", lhs, rhs) }
func Le(lhs, rhs Expr) *Rel { return relOf("<=", lhs, rhs) }
func Ne(lhs, rhs Expr) *Rel { return relOf("!=", lhs, rhs) }

// RelOf builds a relation from its operator spelling.
func RelOf(op string, lhs, rhs Expr) (*Rel, error) {
	if _, ok := relLaTeX[op]; !ok {
		return nil, fmt.Errorf("unknown relational operator %q", op)
	}
	return relOf(op, lhs, rhs), nil
}

func (r *Rel) Simplify() Expr     { return relOf(r.Op, r.LHS.Simplify(), r.RHS.Simplify()) }
func (r *Rel) Eval() (*Num, bool) { return nil, false }
func (r *Rel) String() string     { return r.LHS.String() + " " + r.Op + " " + r.RHS.String() }
func (r *Rel) LaTeX() string      { return r.LHS.LaTeX() + " " + relLaTeX[r.Op] + " " + r.RHS.LaTeX() }

func (r *Rel) Equal(other Expr) bool {
	o, ok := other.(*Rel)
	return ok && r.Op == o.Op && r.LHS.Equal(o.LHS) && r.RHS.Equal(o.RHS)
}

func (r *Rel) exprType() string { return "rel" }
func (r *Rel) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "rel", "op": r.Op, "lhs": r.LHS.toJSON(), "rhs": r.RHS.toJSON()}
}

// ============================================================
// Tuple — ordered alternatives
// ============================================================

type Tuple struct{ elems []Expr }

func TupleOf(elems ...Expr) *Tuple {
	return &Tuple{elems: append([]Expr(nil), elems...)}
}

// Elems returns a copy of the elements.
func (t *Tuple) Elems() []Expr { return append([]Expr(nil), t.elems...) }
func (t *Tuple) Len() int      { return len(t.elems) }

func (t *Tuple) Simplify() Expr {
	out := make([]Expr, len(t.elems))
	for i, e := range t.elems {
		out[i] = e.Simplify()
	}
	return &Tuple{elems: out}
}

func (t *Tuple) Eval() (*Num, bool) { return nil, false }

func (t *Tuple) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) LaTeX() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.LaTeX()
	}
	return "\\left(" + strings.Join(parts, ", ") + "\\right)"
}

func (t *Tuple) Equal(other Expr) bool {
	o, ok := other.(*Tuple)
	return ok && equalAll(t.elems, o.elems)
}

func (t *Tuple) exprType() string { return "tuple" }
func (t *Tuple) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "tuple", "elems": listJSON(t.elems)}
}
