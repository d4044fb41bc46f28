// Package tools exposes goeq systems to agents as JSON tool calls.
//
// Systems live in a Registry and are addressed by id. Expressions travel in
// the expr JSON format; a {"type": "var", "name": ...} or
// {"type": "var", "index": ...} node resolves to the target system's
// variable for that key.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/njchilds90/goeq"
	"github.com/njchilds90/goeq/expr"
)

// ToolRequest is one tool invocation.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries a tool result or an error message.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

var validate = validator.New()

// HandleToolCall dispatches req against reg.
func HandleToolCall(reg *Registry, req ToolRequest) (resp ToolResponse) {
	start := time.Now()
	defer func() { observe(req.Tool, resp, start) }()

	p := params(req.Params)
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	// withSystem runs fn against the system named by the "system" param.
	withSystem := func(fn func(*goeq.System) (ToolResponse, error)) ToolResponse {
		id, err := p.systemID()
		if err != nil {
			return fail(err)
		}
		var out ToolResponse
		err = reg.With(id, func(sys *goeq.System) error {
			var err error
			out, err = fn(sys)
			return err
		})
		if err != nil {
			return fail(err)
		}
		return out
	}

	switch req.Tool {
	case "system_create":
		var cfg goeq.Config
		if raw, ok := p["naming"]; ok && raw != nil {
			b, err := json.Marshal(raw)
			if err != nil {
				return fail(err)
			}
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return fail(fmt.Errorf("param naming: %w", err))
			}
		}
		id, err := reg.Create(cfg)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: map[string]interface{}{"system": id}, String: id}

	case "system_delete":
		id, err := p.systemID()
		if err != nil {
			return fail(err)
		}
		if !reg.Delete(id) {
			return fail(ErrSystemNotFound)
		}
		return ToolResponse{Result: true, String: "deleted " + id}

	case "variable":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			k, err := p.key()
			if err != nil {
				return ToolResponse{}, err
			}
			return respondVars([]goeq.Key{k}, []*expr.Sym{sys.Resolve(k)}), nil
		})

	case "variable_range":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			sl, err := p.slice()
			if err != nil {
				return ToolResponse{}, err
			}
			if err := reg.checkRange(sl); err != nil {
				return ToolResponse{}, err
			}
			idx, err := sl.Indices()
			if err != nil {
				return ToolResponse{}, err
			}
			keys := make([]goeq.Key, len(idx))
			syms := make([]*expr.Sym, len(idx))
			for i, n := range idx {
				keys[i], syms[i] = goeq.Index(n), sys.At(n)
			}
			return respondVars(keys, syms), nil
		})

	case "bind":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			k, err := p.key()
			if err != nil {
				return ToolResponse{}, err
			}
			rhs, err := p.expr(sys.Decoder(), "rhs")
			if err != nil {
				return ToolResponse{}, err
			}
			return respondEquations(sys.Bind(sys.Resolve(k), rhs)), nil
		})

	case "bind_range":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			sl, err := p.slice()
			if err != nil {
				return ToolResponse{}, err
			}
			if err := reg.checkRange(sl); err != nil {
				return ToolResponse{}, err
			}
			values, err := p.exprList(sys.Decoder(), "values")
			if err != nil {
				return ToolResponse{}, err
			}
			if err := sys.BindRange(sl, values); err != nil {
				return ToolResponse{}, err
			}
			slots, _ := sys.Range(sl)
			var eqs []*expr.Equation
			for _, v := range slots {
				bound, err := sys.Lookup(v)
				if err != nil {
					return ToolResponse{}, err
				}
				eqs = append(eqs, bound...)
			}
			return respondEquations(eqs), nil
		})

	case "lookup":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			k, err := p.key()
			if err != nil {
				return ToolResponse{}, err
			}
			v, ok := sys.Inner().Namespace.Lookup(k)
			if !ok {
				return ToolResponse{}, &goeq.Error{Code: goeq.CodeKeyNotFound, Message: "variable has no equations", Key: k.String()}
			}
			eqs, err := sys.Lookup(v)
			if err != nil {
				return ToolResponse{}, err
			}
			return respondEquations(eqs), nil
		})

	case "equations":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			return respondEquations(sys.Equations()), nil
		})

	case "contains":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			var found bool
			if _, ok := p["user_key"]; ok {
				uk, err := p.str("user_key")
				if err != nil {
					return ToolResponse{}, err
				}
				found = sys.Contains(uk)
			} else {
				k, err := p.key()
				if err != nil {
					return ToolResponse{}, err
				}
				v, ok := sys.Inner().Namespace.Lookup(k)
				found = ok && sys.Contains(v)
			}
			return ToolResponse{Result: found, String: fmt.Sprint(found)}, nil
		})

	case "user_set":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			k, err := p.str("key")
			if err != nil {
				return ToolResponse{}, err
			}
			v, ok := p["value"]
			if !ok {
				return ToolResponse{}, fmt.Errorf("missing param: value")
			}
			if err := sys.Set(k, v); err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{Result: v, String: fmt.Sprint(v)}, nil
		})

	case "user_get":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			k, err := p.str("key")
			if err != nil {
				return ToolResponse{}, err
			}
			v, err := sys.Get(k)
			if err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{Result: v, String: fmt.Sprint(v)}, nil
		})

	case "assume":
		return withSystem(func(sys *goeq.System) (ToolResponse, error) {
			_, hasRel := p["relation"]
			_, hasFlag := p["flag"]
			if !hasRel && !hasFlag {
				return ToolResponse{}, fmt.Errorf("missing param: relation or flag")
			}
			if hasRel {
				rel, err := p.expr(sys.Decoder(), "relation")
				if err != nil {
					return ToolResponse{}, err
				}
				sys.Assume(rel)
			}
			if hasFlag {
				flag, err := p.str("flag")
				if err != nil {
					return ToolResponse{}, err
				}
				value, err := p.optBool("value", true)
				if err != nil {
					return ToolResponse{}, err
				}
				sys.AssumeFlag(flag, value)
			}
			return respondAssumptions(sys.Assumptions()), nil
		})

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func respondVars(keys []goeq.Key, syms []*expr.Sym) ToolResponse {
	items := make([]interface{}, len(syms))
	strs := make([]string, len(syms))
	latex := make([]string, len(syms))
	for i, s := range syms {
		items[i] = map[string]interface{}{"key": keys[i], "expr": expr.ToMap(s)}
		strs[i] = s.String()
		latex[i] = s.LaTeX()
	}
	return ToolResponse{Result: items, String: strings.Join(strs, ", "), LaTeX: strings.Join(latex, ", ")}
}

func respondEquations(eqs []*expr.Equation) ToolResponse {
	items := make([]interface{}, len(eqs))
	strs := make([]string, len(eqs))
	latex := make([]string, len(eqs))
	for i, eq := range eqs {
		items[i] = expr.ToMap(eq)
		strs[i] = eq.String()
		latex[i] = eq.LaTeX()
	}
	return ToolResponse{Result: items, String: strings.Join(strs, "; "), LaTeX: strings.Join(latex, ` \\ `)}
}

func respondAssumptions(a goeq.Assumptions) ToolResponse {
	rels := make([]string, len(a.Relations))
	for i, r := range a.Relations {
		rels[i] = r.String()
	}
	return ToolResponse{
		Result: map[string]interface{}{"relations": rels, "flags": a.Flags},
		String: strings.Join(rels, "; "),
	}
}

// params wraps ToolRequest.Params with typed getters.
type params map[string]interface{}

func (p params) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p params) systemID() (string, error) {
	id, err := p.str("system")
	if err != nil {
		return "", err
	}
	if err := validate.Var(id, "required,uuid"); err != nil {
		return "", fmt.Errorf("param system must be a system id")
	}
	return id, nil
}

func (p params) optInt(key string) (int, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, false, fmt.Errorf("param %s must be an integer", key)
	}
	return n, true, nil
}

func (p params) optBool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("param %s must be a boolean", key)
	}
	return b, nil
}

// key reads a variable key from "index" (an integer) or "name" (a string).
func (p params) key() (goeq.Key, error) {
	if i, ok, err := p.optInt("index"); err != nil {
		return goeq.Key{}, err
	} else if ok {
		return goeq.Index(i), nil
	}
	if _, ok := p["name"]; !ok {
		return goeq.Key{}, fmt.Errorf("missing param: name or index")
	}
	name, err := p.str("name")
	if err != nil {
		return goeq.Key{}, err
	}
	if err := validate.Var(name, "required"); err != nil {
		return goeq.Key{}, fmt.Errorf("param name must not be empty")
	}
	return goeq.Name(name), nil
}

// slice reads optional "start", "stop" and "step". A missing stop is left
// for Slice.Indices to reject.
func (p params) slice() (goeq.Slice, error) {
	start, hasStart, err := p.optInt("start")
	if err != nil {
		return goeq.Slice{}, err
	}
	stop, hasStop, err := p.optInt("stop")
	if err != nil {
		return goeq.Slice{}, err
	}
	var sl goeq.Slice
	switch {
	case hasStart && hasStop:
		sl = goeq.Between(start, stop)
	case hasStop:
		sl = goeq.To(stop)
	case hasStart:
		sl = goeq.From(start)
	default:
		sl = goeq.Full()
	}
	step, hasStep, err := p.optInt("step")
	if err != nil {
		return goeq.Slice{}, err
	}
	if hasStep {
		sl = sl.By(step)
	}
	return sl, nil
}

func (p params) expr(dec expr.Decoder, key string) (expr.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	return dec.Decode(m)
}

func (p params) exprList(dec expr.Decoder, key string) ([]expr.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	return dec.DecodeList(raw)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
