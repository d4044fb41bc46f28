package goeq

import (
	"log/slog"

	"github.com/njchilds90/goeq/expr"
)

// affix is one side of the naming policy: a prefix or a suffix together with
// the key set it is restricted to.
type affix struct {
	text    string
	include keySet
	exclude keySet
}

// appliesTo reports whether the affix decorates k: k is in a non-empty
// include list, or k is absent from the exclude list when include is empty.
func (a affix) appliesTo(k Key) bool {
	return (len(a.exclude) == 0 && a.include.has(k)) ||
		(len(a.include) == 0 && !a.exclude.has(k))
}

func (a affix) textFor(k Key) string {
	if a.appliesTo(k) {
		return a.text
	}
	return ""
}

// NamingPolicy turns keys into the decorated names handed to the expression
// engine.
type NamingPolicy struct {
	prefix affix
	suffix affix
}

// NewNamingPolicy validates cfg and compiles its prefix and suffix rules.
func NewNamingPolicy(cfg Config) (NamingPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return NamingPolicy{}, err
	}
	return NamingPolicy{
		prefix: affix{text: cfg.Prefix, include: newKeySet(cfg.PrefixInclude), exclude: newKeySet(cfg.PrefixExclude)},
		suffix: affix{text: cfg.Suffix, include: newKeySet(cfg.SuffixInclude), exclude: newKeySet(cfg.SuffixExclude)},
	}, nil
}

// Decorate returns prefix + key + suffix under the policy.
func (p NamingPolicy) Decorate(k Key) string {
	return p.prefix.textFor(k) + k.String() + p.suffix.textFor(k)
}

// Namespace mints and interns variables. Each key resolves to exactly one
// *expr.Sym for the lifetime of the namespace.
//
// A Namespace is not safe for concurrent use.
type Namespace struct {
	policy     NamingPolicy
	allDummies bool
	dummies    keySet

	symbols map[Key]*expr.Sym
	keys    map[*expr.Sym]Key
	order   []Key

	logger *slog.Logger
}

// NewNamespace builds a namespace from cfg. It fails with ErrConfig when an
// include and an exclude list are both set for the same side.
func NewNamespace(cfg Config) (*Namespace, error) {
	policy, err := NewNamingPolicy(cfg)
	if err != nil {
		return nil, err
	}
	return &Namespace{
		policy:     policy,
		allDummies: cfg.Dummies.All,
		dummies:    newKeySet(cfg.Dummies.Keys),
		symbols:    map[Key]*expr.Sym{},
		keys:       map[*expr.Sym]Key{},
		logger:     slog.New(slog.DiscardHandler),
	}, nil
}

// Resolve returns the variable for k, creating it on first use.
//
// Index keys always yield dummy variables. Name keys yield dummies when the
// namespace was configured with all dummies or lists the key; otherwise they
// yield plain symbols, which compare equal to any same-named plain symbol.
func (ns *Namespace) Resolve(k Key) *expr.Sym {
	if s, ok := ns.symbols[k]; ok {
		return s
	}
	name := ns.policy.Decorate(k)
	var s *expr.Sym
	if ns.isDummy(k) {
		s = expr.D(name)
	} else {
		s = expr.S(name)
	}
	ns.symbols[k] = s
	ns.keys[s] = k
	ns.order = append(ns.order, k)
	ns.logger.Debug("variable minted", "key", k.String(), "name", name, "dummy", s.IsDummy())
	return s
}

func (ns *Namespace) isDummy(k Key) bool {
	return k.IsIndex() || ns.allDummies || ns.dummies.has(k)
}

// Lookup returns the variable for k without creating it.
func (ns *Namespace) Lookup(k Key) (*expr.Sym, bool) {
	s, ok := ns.symbols[k]
	return s, ok
}

// KeyFor returns the key a variable was minted from.
func (ns *Namespace) KeyFor(s *expr.Sym) (Key, bool) {
	k, ok := ns.keys[s]
	return k, ok
}

// Keys lists the resolved keys in first-resolution order.
func (ns *Namespace) Keys() []Key {
	return append([]Key(nil), ns.order...)
}

// Len returns the number of resolved variables.
func (ns *Namespace) Len() int { return len(ns.order) }

// Policy returns the naming policy.
func (ns *Namespace) Policy() NamingPolicy { return ns.policy }
