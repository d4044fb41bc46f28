// Package vars hands out free-standing variables that belong to no System.
//
// Symbol interns plain symbols in a process-wide table, so the same name
// always yields the same pointer. Dummy mints a fresh dummy on every call.
package vars

import (
	"sync"

	"github.com/njchilds90/goeq/expr"
)

// Table interns plain symbols by name. The zero value is ready to use and
// safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	symbols map[string]*expr.Sym
}

// Symbol returns the interned plain symbol for name.
func (t *Table) Symbol(name string) *expr.Sym {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.symbols[name]; ok {
		return s
	}
	if t.symbols == nil {
		t.symbols = map[string]*expr.Sym{}
	}
	s := expr.S(name)
	t.symbols[name] = s
	return s
}

// Len returns the number of interned symbols.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.symbols)
}

var global Table

// Symbol returns the process-wide plain symbol for name.
func Symbol(name string) *expr.Sym { return global.Symbol(name) }

// Symbols returns one process-wide plain symbol per name.
func Symbols(names ...string) []*expr.Sym {
	out := make([]*expr.Sym, len(names))
	for i, n := range names {
		out[i] = global.Symbol(n)
	}
	return out
}

// Dummy returns a new dummy named name. Two calls never return equal
// variables.
func Dummy(name string) *expr.Sym { return expr.D(name) }

// Dummies returns one new dummy per name.
func Dummies(names ...string) []*expr.Sym {
	out := make([]*expr.Sym, len(names))
	for i, n := range names {
		out[i] = expr.D(n)
	}
	return out
}
