package expr

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Simplify flattens nested sums, folds numeric terms, and combines like terms
// by symbolic identity, so a dummy never merges with a same-named plain
// symbol.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type like struct {
		coeff *Num
		rest  Expr
		key   string
	}
	numAccum := N(0)
	var groups []*like
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := splitCoeff(t)
		merged := false
		for _, g := range groups {
			if g.rest.Equal(rest) {
				g.coeff = numAdd(g.coeff, coeff)
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, &like{coeff: coeff, rest: rest, key: rest.String()})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].key < groups[j].key })

	result := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		switch {
		case g.coeff.IsZero():
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, MulOf(g.coeff, g.rest))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the numeric coefficient of a canonical term.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": listJSON(a.terms)}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Simplify flattens nested products, folds the numeric coefficient to the
// front, merges repeated bases into powers, and orders the rest by their
// rendering.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type power struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	var powers []*power
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := Expr(f), Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		merged := false
		for _, pw := range powers {
			if pw.base.Equal(base) {
				pw.exps = append(pw.exps, exp)
				merged = true
				break
			}
		}
		if !merged {
			powers = append(powers, &power{base: base, exps: []Expr{exp}})
		}
	}
	if coeff.IsZero() {
		return N(0)
	}

	type keyed struct {
		e   Expr
		key string
	}
	others := make([]keyed, 0, len(powers))
	for _, pw := range powers {
		var f Expr
		if len(pw.exps) == 1 {
			f = PowOf(pw.base, pw.exps[0])
		} else {
			f = PowOf(pw.base, AddOf(pw.exps...))
		}
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, keyed{e: f, key: f.String()})
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].key < others[j].key })

	out := make([]Expr, 0, len(others)+1)
	if !coeff.IsOne() {
		out = append(out, coeff)
	}
	for _, k := range others {
		out = append(out, k.e)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Mul{factors: out}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": listJSON(m.factors)}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^0 and 0^negative stay unevaluated.
			if expIsNum && en.IsNegative() {
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		case bn.IsOne():
			return N(1)
		case expIsNum && en.IsInteger() && en.val.Num().IsInt64():
			e := en.val.Num().Int64()
			if e >= -20 && e <= 20 {
				result := N(1)
				for i := int64(0); i < abs64(e); i++ {
					result = numMul(result, bn)
				}
				if e < 0 {
					return numRecip(result)
				}
				return result
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func listJSON(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}
