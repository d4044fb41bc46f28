package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes e in the tree format understood by FromJSON.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the JSON tree of e as a generic map.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

// VarRef names a variable owned by some namespace: by name, or by integer
// index when IsIndex is set.
type VarRef struct {
	Name    string
	Index   int
	IsIndex bool
}

func (r VarRef) String() string {
	if r.IsIndex {
		return fmt.Sprintf("%d", r.Index)
	}
	return r.Name
}

// Decoder turns JSON trees back into expressions. Resolve handles "var"
// nodes; a Decoder without a resolver rejects them.
type Decoder struct {
	Resolve func(ref VarRef) (Expr, error)
}

// FromJSON decodes a tree without variable resolution.
func FromJSON(data map[string]interface{}) (Expr, error) {
	return Decoder{}.Decode(data)
}

// Decode decodes one expression tree. A "dummy" node mints a new dummy
// symbol on every decode.
func (d Decoder) Decode(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := d.Decode(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subList := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		return d.DecodeList(raw)
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		v, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return numFromAny(v)

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "dummy":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return D(name), nil

	case "var":
		if d.Resolve == nil {
			return nil, fmt.Errorf("var: no namespace to resolve against")
		}
		ref, err := varRef(data)
		if err != nil {
			return nil, err
		}
		e, err := d.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", ref, err)
		}
		return e, nil

	case "add":
		terms, err := subList("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subList("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := sub("base")
		if err != nil {
			return nil, err
		}
		exp, err := sub("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return FuncOf(name, arg), nil

	case "eq":
		lhs, err := sub("lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := sub("rhs")
		if err != nil {
			return nil, err
		}
		return Eq(lhs, rhs), nil

	case "rel":
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		lhs, err := sub("lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := sub("rhs")
		if err != nil {
			return nil, err
		}
		return RelOf(op, lhs, rhs)

	case "tuple":
		elems, err := subList("elems")
		if err != nil {
			return nil, err
		}
		return TupleOf(elems...), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// DecodeList decodes an array of expression trees.
func (d Decoder) DecodeList(raw []interface{}) ([]Expr, error) {
	out := make([]Expr, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("[%d] must be an object", i)
		}
		e, err := d.Decode(m)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

func varRef(data map[string]interface{}) (VarRef, error) {
	if v, ok := data["index"]; ok {
		i, err := intFromAny(v)
		if err != nil {
			return VarRef{}, fmt.Errorf("var: 'index' %w", err)
		}
		return VarRef{Index: i, IsIndex: true}, nil
	}
	name, ok := data["name"].(string)
	if !ok || name == "" {
		return VarRef{}, fmt.Errorf("var: needs a non-empty 'name' or an integer 'index'")
	}
	return VarRef{Name: name}, nil
}

// numFromAny accepts the rational strings written by ToJSON as well as the
// numbers produced by JSON and YAML decoders.
func numFromAny(v interface{}) (*Num, error) {
	switch n := v.(type) {
	case string:
		r := new(big.Rat)
		if _, ok := r.SetString(n); !ok || n == "" {
			return nil, fmt.Errorf("invalid num value: %q", n)
		}
		return &Num{val: r}, nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return N(int64(n)), nil
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("invalid num value: %v", n)
		}
		return NFloat(n), nil
	case int:
		return N(int64(n)), nil
	case int64:
		return N(n), nil
	case json.Number:
		return numFromAny(n.String())
	}
	return nil, fmt.Errorf("num: 'value' must be a string or number, got %T", v)
}

func intFromAny(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("must be an integer, got %v", n)
		}
		if n < math.MinInt || n >= math.MaxInt {
			return 0, fmt.Errorf("integer out of range: %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer: %w", err)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("must be an integer, got %T", v)
}
