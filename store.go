package goeq

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"

	"github.com/njchilds90/goeq/expr"
)

// record is the equation list produced by one assignment to a variable.
type record struct {
	v   *expr.Sym
	eqs []*expr.Equation
}

// EquationStore binds variables to their defining equations. Records are
// keyed by variable identity, so any plain symbol with the same name finds
// the same record while a dummy only finds its own.
type EquationStore struct {
	records map[expr.ID]*record
	order   []expr.ID
	logger  *slog.Logger
}

// NewEquationStore returns an empty store.
func NewEquationStore() *EquationStore {
	return &EquationStore{records: map[expr.ID]*record{}, logger: slog.New(slog.DiscardHandler)}
}

// Normalize expands rhs into the equations it defines for v:
//   - an equality lhs = other yields v = lhs and v = other
//   - a sequence yields one equation per element, in order
//   - anything else yields the single equation v = rhs
func Normalize(v *expr.Sym, rhs expr.Expr) []*expr.Equation {
	switch r := rhs.(type) {
	case *expr.Equation:
		return []*expr.Equation{expr.Eq(v, r.LHS), expr.Eq(v, r.RHS)}
	case expr.Sequence:
		elems := r.Elems()
		eqs := make([]*expr.Equation, len(elems))
		for i, el := range elems {
			eqs[i] = expr.Eq(v, el)
		}
		return eqs
	}
	return []*expr.Equation{expr.Eq(v, rhs)}
}

// Bind normalizes rhs and replaces whatever v was bound to before. A rebound
// variable keeps its original position in iteration order.
func (s *EquationStore) Bind(v *expr.Sym, rhs expr.Expr) []*expr.Equation {
	return s.put(v, Normalize(v, rhs))
}

// BindOne records the single equation v = rhs without normalizing rhs.
func (s *EquationStore) BindOne(v *expr.Sym, rhs expr.Expr) []*expr.Equation {
	return s.put(v, []*expr.Equation{expr.Eq(v, rhs)})
}

func (s *EquationStore) put(v *expr.Sym, eqs []*expr.Equation) []*expr.Equation {
	id := v.ID()
	if r, ok := s.records[id]; ok {
		s.logger.Debug("equation record replaced", "var", v.String(), "old", len(r.eqs), "new", len(eqs))
		r.eqs = eqs
	} else {
		s.records[id] = &record{v: v, eqs: eqs}
		s.order = append(s.order, id)
		s.logger.Debug("equation record added", "var", v.String(), "count", len(eqs))
	}
	return append([]*expr.Equation(nil), eqs...)
}

// Lookup returns the equations bound to v.
func (s *EquationStore) Lookup(v *expr.Sym) ([]*expr.Equation, error) {
	r, ok := s.records[v.ID()]
	if !ok {
		return nil, newError(CodeKeyNotFound, v.String(), "variable has no equations")
	}
	return append([]*expr.Equation(nil), r.eqs...), nil
}

// Has reports whether v is bound.
func (s *EquationStore) Has(v *expr.Sym) bool {
	_, ok := s.records[v.ID()]
	return ok
}

// Variables returns the bound variables in first-binding order.
func (s *EquationStore) Variables() []*expr.Sym {
	out := make([]*expr.Sym, len(s.order))
	for i, id := range s.order {
		out[i] = s.records[id].v
	}
	return out
}

// Len returns the number of bound variables.
func (s *EquationStore) Len() int { return len(s.order) }

// All yields every equation, variable by variable in first-binding order and
// in record order within a variable.
func (s *EquationStore) All() iter.Seq[*expr.Equation] {
	return func(yield func(*expr.Equation) bool) {
		for _, id := range s.order {
			for _, eq := range s.records[id].eqs {
				if !yield(eq) {
					return
				}
			}
		}
	}
}

// UserStore holds arbitrary bookkeeping values that are not part of the
// symbolic system.
type UserStore struct {
	values map[any]any
	order  []any
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{values: map[any]any{}}
}

// Set stores value under key. The key must be comparable.
func (u *UserStore) Set(key, value any) error {
	if err := checkComparable(key); err != nil {
		return err
	}
	if _, ok := u.values[key]; !ok {
		u.order = append(u.order, key)
	}
	u.values[key] = value
	return nil
}

// Get returns the value stored under key.
func (u *UserStore) Get(key any) (any, error) {
	if err := checkComparable(key); err != nil {
		return nil, err
	}
	v, ok := u.values[key]
	if !ok {
		return nil, newError(CodeKeyNotFound, fmt.Sprint(key), "no user value")
	}
	return v, nil
}

// Has reports whether key is present. Values are never consulted.
func (u *UserStore) Has(key any) bool {
	if checkComparable(key) != nil {
		return false
	}
	_, ok := u.values[key]
	return ok
}

// Keys lists user keys in insertion order.
func (u *UserStore) Keys() []any { return append([]any(nil), u.order...) }

// Len returns the number of user entries.
func (u *UserStore) Len() int { return len(u.order) }

func checkComparable(key any) error {
	if key == nil {
		return newError(CodeInvalidKey, "<nil>", "nil is not a valid key")
	}
	if !reflect.TypeOf(key).Comparable() {
		return newError(CodeInvalidKey, "", "%T is not a comparable key", key)
	}
	return nil
}
