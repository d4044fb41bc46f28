// Package goeq manages systems of symbolic equations.
//
// A System mints variables under configurable naming rules, binds each
// variable to the equations that define it, and keeps a side store of
// arbitrary user data:
//
//	sys := goeq.MustNew(goeq.Config{Prefix: "B_"})
//	x, y := sys.Var("x"), sys.Var("y")
//	sys.Bind(x, expr.MulOf(expr.N(2), y))     // B_x = 2*B_y
//	slots, _ := sys.Range(goeq.To(3))         // _B_0, _B_1, _B_2
//
// Variables requested by name are plain symbols unless the configuration
// lists them as dummies; variables requested by integer index are always
// dummies. Expressions come from package expr.
//
// A System is not safe for concurrent use; guard it externally when it is
// shared.
package goeq

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/njchilds90/goeq/expr"
)

// State is the aggregate behind a System.
type State struct {
	Namespace *Namespace
	Equations *EquationStore
	User      *UserStore
}

// Assumptions are the relations and flags recorded through Assume and
// AssumeFlag.
type Assumptions struct {
	Relations []expr.Expr
	Flags     map[string]bool
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// System is the facade over variable resolution, equation storage and user
// data.
type System struct {
	state     *State
	relations []expr.Expr
	flags     map[string]bool
	logger    *slog.Logger
}

// New builds a System. It fails with ErrConfig when cfg sets both an include
// and an exclude list on the same side.
func New(cfg Config, opts ...Option) (*System, error) {
	ns, err := NewNamespace(cfg)
	if err != nil {
		return nil, err
	}
	s := &System{
		state: &State{
			Namespace: ns,
			Equations: NewEquationStore(),
			User:      NewUserStore(),
		},
		flags:  map[string]bool{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	ns.logger = s.logger
	s.state.Equations.logger = s.logger
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(cfg Config, opts ...Option) *System {
	s, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Inner exposes the underlying state for advanced use.
func (s *System) Inner() *State { return s.state }

// Var returns the variable named name. The name is always a name key, even
// when it looks numeric.
func (s *System) Var(name string) *expr.Sym {
	return s.state.Namespace.Resolve(Name(name))
}

// Vars returns one variable per name.
func (s *System) Vars(names ...string) []*expr.Sym {
	out := make([]*expr.Sym, len(names))
	for i, n := range names {
		out[i] = s.Var(n)
	}
	return out
}

// At returns the dummy variable for index i.
func (s *System) At(i int) *expr.Sym {
	return s.state.Namespace.Resolve(Index(i))
}

// Resolve returns the variable for k.
func (s *System) Resolve(k Key) *expr.Sym {
	return s.state.Namespace.Resolve(k)
}

// Decoder returns an expression decoder whose var nodes resolve to this
// system's variables.
func (s *System) Decoder() expr.Decoder {
	return expr.Decoder{Resolve: func(ref expr.VarRef) (expr.Expr, error) {
		if ref.IsIndex {
			return s.At(ref.Index), nil
		}
		return s.Var(ref.Name), nil
	}}
}

// SetEquation binds the variable named name to rhs.
func (s *System) SetEquation(name string, rhs expr.Expr) []*expr.Equation {
	return s.Bind(s.Var(name), rhs)
}

// BindAt binds the variable for index i to rhs.
func (s *System) BindAt(i int, rhs expr.Expr) []*expr.Equation {
	return s.Bind(s.At(i), rhs)
}

// Bind replaces the equations of v with those defined by rhs. An equality
// rhs yields two equations, a sequence one per element, anything else one.
func (s *System) Bind(v *expr.Sym, rhs expr.Expr) []*expr.Equation {
	return s.state.Equations.Bind(v, rhs)
}

// Lookup returns the equations bound to v, or ErrKeyNotFound.
func (s *System) Lookup(v *expr.Sym) ([]*expr.Equation, error) {
	return s.state.Equations.Lookup(v)
}

// Range returns the variables for every index selected by sl, in order.
func (s *System) Range(sl Slice) ([]*expr.Sym, error) {
	indices, err := sl.Indices()
	if err != nil {
		return nil, err
	}
	out := make([]*expr.Sym, len(indices))
	for i, idx := range indices {
		out[i] = s.At(idx)
	}
	return out, nil
}

// BindRange binds the i-th selected variable to values[i]. Each slot gets the
// single equation v = values[i], without equality or sequence expansion.
// Nothing is bound when the lengths differ.
func (s *System) BindRange(sl Slice, values []expr.Expr) error {
	indices, err := sl.Indices()
	if err != nil {
		return err
	}
	if len(indices) != len(values) {
		return newError(CodeArityMismatch, sl.String(),
			"slice and values must have same length: %d indices, %d values", len(indices), len(values))
	}
	for i, idx := range indices {
		s.state.Equations.BindOne(s.At(idx), values[i])
	}
	return nil
}

// Get is the uniform read accessor:
//   - an int or index Key returns the variable for that index
//   - a name Key returns the variable for that name
//   - an *expr.Sym returns its equations
//   - a Slice returns the selected variables
//   - any other key reads the user store
func (s *System) Get(key any) (any, error) {
	switch k := key.(type) {
	case Key:
		return s.Resolve(k), nil
	case *expr.Sym:
		return s.Lookup(k)
	case Slice:
		return s.Range(k)
	}
	if i, ok, err := asIndex(key); err != nil {
		return nil, err
	} else if ok {
		return s.At(i), nil
	}
	return s.state.User.Get(key)
}

// Set is the uniform write accessor, mirroring Get:
//   - an int or Key binds the resolved variable to value (an expr.Expr)
//   - an *expr.Sym binds that variable
//   - a Slice binds pointwise from value ([]expr.Expr or *expr.Tuple)
//   - any other key writes the user store, with no equation semantics
func (s *System) Set(key, value any) error {
	switch k := key.(type) {
	case Key:
		return s.bindValue(s.Resolve(k), value)
	case *expr.Sym:
		return s.bindValue(k, value)
	case Slice:
		values, err := exprList(value)
		if err != nil {
			return err
		}
		return s.BindRange(k, values)
	}
	if i, ok, err := asIndex(key); err != nil {
		return err
	} else if ok {
		return s.bindValue(s.At(i), value)
	}
	return s.state.User.Set(key, value)
}

func (s *System) bindValue(v *expr.Sym, value any) error {
	rhs, ok := value.(expr.Expr)
	if !ok {
		return newError(CodeInvalidValue, v.String(), "%T is not an expression", value)
	}
	s.Bind(v, rhs)
	return nil
}

// Contains reports whether key is a bound variable or a user-store key. User
// values are never matched.
func (s *System) Contains(key any) bool {
	if v, ok := key.(*expr.Sym); ok && s.state.Equations.Has(v) {
		return true
	}
	return s.state.User.Has(key)
}

// All yields every bound equation in binding order.
func (s *System) All() iter.Seq[*expr.Equation] {
	return s.state.Equations.All()
}

// Equations returns every bound equation in binding order.
func (s *System) Equations() []*expr.Equation {
	return slices.Collect(s.All())
}

// Assume records relations such as x > 0. They are kept for callers and have
// no effect on resolution or binding.
func (s *System) Assume(relations ...expr.Expr) {
	s.relations = append(s.relations, relations...)
}

// AssumeFlag records a named assumption flag such as positive=true.
func (s *System) AssumeFlag(name string, value bool) {
	s.flags[name] = value
}

// Assumptions returns a copy of what Assume and AssumeFlag recorded.
func (s *System) Assumptions() Assumptions {
	return Assumptions{
		Relations: slices.Clone(s.relations),
		Flags:     maps.Clone(s.flags),
	}
}

// String summarizes the system size.
func (s *System) String() string {
	return fmt.Sprintf("System(%d variables, %d bound, %d user)",
		s.state.Namespace.Len(), s.state.Equations.Len(), s.state.User.Len())
}

// asIndex reports whether key is an integer index. Unsigned values beyond
// the int range fail with ErrInvalidKey.
func asIndex(key any) (int, bool, error) {
	var u uint64
	switch k := key.(type) {
	case int:
		return k, true, nil
	case int8:
		return int(k), true, nil
	case int16:
		return int(k), true, nil
	case int32:
		return int(k), true, nil
	case int64:
		return int(k), true, nil
	case uint8:
		return int(k), true, nil
	case uint16:
		return int(k), true, nil
	case uint32:
		u = uint64(k)
	case uint:
		u = uint64(k)
	case uint64:
		u = k
	case uintptr:
		u = uint64(k)
	default:
		return 0, false, nil
	}
	if u > math.MaxInt {
		return 0, false, newError(CodeInvalidKey, strconv.FormatUint(u, 10), "index out of range")
	}
	return int(u), true, nil
}

func exprList(value any) ([]expr.Expr, error) {
	switch v := value.(type) {
	case []expr.Expr:
		return v, nil
	case *expr.Tuple:
		return v.Elems(), nil
	}
	return nil, newError(CodeInvalidValue, "", "%T is not a list of expressions", value)
}
