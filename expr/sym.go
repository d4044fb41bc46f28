package expr

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ============================================================
// Sym — plain or dummy symbolic variable
// ============================================================

// Sym is a symbolic variable. A plain symbol is identified by its name; a
// dummy symbol additionally carries a process-unique id, so two dummies are
// never equal even when they share a name.
type Sym struct {
	name  string
	dummy uint64 // 0 for plain symbols
}

var dummyCounter atomic.Uint64

// S returns a plain symbol.
func S(name string) *Sym { return &Sym{name: name} }

// D returns a new dummy symbol. Every call yields a distinct variable.
func D(name string) *Sym { return &Sym{name: name, dummy: dummyCounter.Add(1)} }

func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) Eval() (*Num, bool) { return nil, false }
func (s *Sym) exprType() string   { return "sym" }
func (s *Sym) Name() string       { return s.name }
func (s *Sym) IsDummy() bool      { return s.dummy != 0 }

// String renders dummies with a leading underscore, e.g. "_x".
func (s *Sym) String() string {
	if s.dummy != 0 {
		return "_" + s.name
	}
	return s.name
}

func (s *Sym) LaTeX() string {
	name := strings.ReplaceAll(s.name, "_", "\\_")
	if s.dummy != 0 {
		return "\\_" + name
	}
	return name
}

// ID is the comparable identity of a symbol. Dummy is 0 for plain symbols.
type ID struct {
	Name  string
	Dummy uint64
}

// ID returns the identity of s. Two symbols are Equal iff their IDs match.
func (s *Sym) ID() ID { return ID{Name: s.name, Dummy: s.dummy} }

// Ident is a readable label for the symbol: its name when plain, name and
// dummy id when dummy. It is not an identity; use ID for that.
func (s *Sym) Ident() string {
	if s.dummy != 0 {
		return s.name + "#" + strconv.FormatUint(s.dummy, 10)
	}
	return s.name
}

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name && s.dummy == o.dummy
}

func (s *Sym) toJSON() map[string]interface{} {
	if s.dummy != 0 {
		return map[string]interface{}{"type": "dummy", "name": s.name}
	}
	return map[string]interface{}{"type": "sym", "name": s.name}
}

// ============================================================
// Free symbols
// ============================================================

// FreeSymbols returns every symbol appearing in e, keyed by ID.
func FreeSymbols(e Expr) map[ID]*Sym {
	out := map[ID]*Sym{}
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out map[ID]*Sym) {
	switch v := e.(type) {
	case *Sym:
		out[v.ID()] = v
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Equation:
		collectSymbols(v.LHS, out)
		collectSymbols(v.RHS, out)
	case *Rel:
		collectSymbols(v.LHS, out)
		collectSymbols(v.RHS, out)
	case *Tuple:
		for _, el := range v.elems {
			collectSymbols(el, out)
		}
	}
}
