// Package sysfile loads equation systems from YAML documents.
//
// A document looks like:
//
//	naming:
//	  prefix: B_
//	equations:
//	  - name: x
//	    rhs: {type: mul, factors: [{type: num, value: 2}, {type: var, name: y}]}
//	  - range: {stop: 2}
//	    values: [{type: var, name: x}, {type: num, value: 1}]
//	user:
//	  source: notebook
//	assumptions:
//	  - {type: rel, op: ">", lhs: {type: var, name: y}, rhs: {type: num, value: 0}}
//	flags:
//	  real: true
//
// Expressions use the expr JSON tree format; var nodes resolve against the
// system being built.
package sysfile

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/goeq"
)

// Document is a YAML system description.
type Document struct {
	Naming      goeq.Config              `yaml:"naming"`
	Equations   []Equation               `yaml:"equations" validate:"dive"`
	User        map[string]interface{}   `yaml:"user"`
	Assumptions []map[string]interface{} `yaml:"assumptions"`
	Flags       map[string]bool          `yaml:"flags"`
}

// Equation binds one variable (by name or index) to rhs, or each index of a
// range to the matching entry of values.
type Equation struct {
	Name   string                 `yaml:"name" validate:"required_without_all=Index Range,excluded_with=Index Range"`
	Index  *int                   `yaml:"index" validate:"excluded_with=Range"`
	RHS    map[string]interface{} `yaml:"rhs" validate:"required_without=Range,excluded_with=Range"`
	Range  *Range                 `yaml:"range"`
	Values []interface{}          `yaml:"values" validate:"required_with=Range,excluded_without=Range"`
}

// Range is start:stop:step. A missing stop is rejected when the document is
// built.
type Range struct {
	Start *int `yaml:"start"`
	Stop  *int `yaml:"stop"`
	Step  *int `yaml:"step"`
}

// Slice converts r to a goeq.Slice.
func (r Range) Slice() goeq.Slice {
	var sl goeq.Slice
	switch {
	case r.Start != nil && r.Stop != nil:
		sl = goeq.Between(*r.Start, *r.Stop)
	case r.Stop != nil:
		sl = goeq.To(*r.Stop)
	case r.Start != nil:
		sl = goeq.From(*r.Start)
	default:
		sl = goeq.Full()
	}
	if r.Step != nil {
		sl = sl.By(*r.Step)
	}
	return sl
}

// Key returns the variable key of a single-variable entry.
func (e Equation) Key() goeq.Key {
	if e.Index != nil {
		return goeq.Index(*e.Index)
	}
	return goeq.Name(e.Name)
}

var validate = validator.New()

// Load decodes and validates a document. Unknown fields are rejected.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile is Load over the named file.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document shape and naming rules.
func (d *Document) Validate() error {
	if err := d.Naming.Validate(); err != nil {
		return fmt.Errorf("naming: %w", err)
	}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q rule", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

// Build creates the system the document describes. Entries are applied in
// order; user entries in sorted key order.
func (d *Document) Build(opts ...goeq.Option) (*goeq.System, error) {
	sys, err := goeq.New(d.Naming, opts...)
	if err != nil {
		return nil, fmt.Errorf("naming: %w", err)
	}
	dec := sys.Decoder()
	for i, eq := range d.Equations {
		if eq.Range != nil {
			values, err := dec.DecodeList(eq.Values)
			if err != nil {
				return nil, fmt.Errorf("equations[%d].values%w", i, err)
			}
			if err := sys.BindRange(eq.Range.Slice(), values); err != nil {
				return nil, fmt.Errorf("equations[%d]: %w", i, err)
			}
			continue
		}
		v := sys.Resolve(eq.Key())
		rhs, err := dec.Decode(eq.RHS)
		if err != nil {
			return nil, fmt.Errorf("equations[%d].rhs: %w", i, err)
		}
		sys.Bind(v, rhs)
	}
	for _, k := range slices.Sorted(maps.Keys(d.User)) {
		if err := sys.Set(k, d.User[k]); err != nil {
			return nil, fmt.Errorf("user[%s]: %w", k, err)
		}
	}
	for i, raw := range d.Assumptions {
		rel, err := dec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("assumptions[%d]: %w", i, err)
		}
		sys.Assume(rel)
	}
	for _, k := range slices.Sorted(maps.Keys(d.Flags)) {
		sys.AssumeFlag(k, d.Flags[k])
	}
	return sys, nil
}
