package tools_test

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/goeq"
	"github.com/njchilds90/goeq/tools"
)

type obj = map[string]interface{}

func call(t *testing.T, reg *tools.Registry, tool string, params obj) tools.ToolResponse {
	t.Helper()
	// round-trip through JSON so params look like a decoded request
	b, err := json.Marshal(tools.ToolRequest{Tool: tool, Params: params})
	require.NoError(t, err)
	var req tools.ToolRequest
	require.NoError(t, json.Unmarshal(b, &req))
	return tools.HandleToolCall(reg, req)
}

func mustOK(t *testing.T, resp tools.ToolResponse) tools.ToolResponse {
	t.Helper()
	require.Empty(t, resp.Error)
	return resp
}

func create(t *testing.T, reg *tools.Registry, naming obj) string {
	t.Helper()
	p := obj{}
	if naming != nil {
		p["naming"] = naming
	}
	resp := mustOK(t, call(t, reg, "system_create", p))
	return resp.String
}

func num(v string) obj { return obj{"type": "num", "value": v} }
func named(n string) obj { return obj{"type": "var", "name": n} }
func indexed(i int) obj { return obj{"type": "var", "index": i} }
func mul(factors ...obj) obj { return obj{"type": "mul", "factors": factors} }
func eq(lhs, rhs obj) obj { return obj{"type": "eq", "lhs": lhs, "rhs": rhs} }
func tuple(elems ...obj) obj { return obj{"type": "tuple", "elems": elems} }
func rel(op string, l, r obj) obj { return obj{"type": "rel", "op": op, "lhs": l, "rhs": r} }

// ============================================================
// Registry
// ============================================================

func TestRegistryLifecycle(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id, err := reg.Create(goeq.Config{Prefix: "p_"})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, reg.IDs())

	err = reg.With(id, func(sys *goeq.System) error {
		assert.Equal(t, "p_x", sys.Var("x").String())
		return nil
	})
	require.NoError(t, err)

	assert.True(t, reg.Delete(id))
	assert.False(t, reg.Delete(id))
	assert.ErrorIs(t, reg.With(id, func(*goeq.System) error { return nil }), tools.ErrSystemNotFound)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryRejectsBadConfig(t *testing.T) {
	reg := tools.NewRegistry(nil)
	_, err := reg.Create(goeq.Config{SuffixInclude: goeq.Names("a"), SuffixExclude: goeq.Names("b")})
	assert.True(t, goeq.IsConfigError(err))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id, err := reg.Create(goeq.Config{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = reg.With(id, func(sys *goeq.System) error {
				sys.BindAt(i, sys.Var("x"))
				return nil
			})
		}(i)
	}
	wg.Wait()
	_ = reg.With(id, func(sys *goeq.System) error {
		assert.Len(t, sys.Equations(), 20)
		return nil
	})
}

// ============================================================
// Tool calls
// ============================================================

func TestToolVariables(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, obj{"prefix": "B_"})

	resp := mustOK(t, call(t, reg, "variable", obj{"system": id, "name": "x"}))
	assert.Equal(t, "B_x", resp.String)

	resp = mustOK(t, call(t, reg, "variable", obj{"system": id, "index": 0}))
	assert.Equal(t, "_B_0", resp.String)

	resp = mustOK(t, call(t, reg, "variable_range", obj{"system": id, "start": 2, "stop": 0, "step": -1}))
	assert.Equal(t, "_B_2, _B_1", resp.String)

	resp = call(t, reg, "variable_range", obj{"system": id, "start": 0})
	assert.Contains(t, resp.Error, "slice must include stop index")

	resp = call(t, reg, "variable", obj{"system": id})
	assert.Contains(t, resp.Error, "missing param: name or index")

	resp = call(t, reg, "variable", obj{"system": id, "index": 1.5})
	assert.Contains(t, resp.Error, "must be an integer")
}

func TestToolBindAndLookup(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)

	resp := mustOK(t, call(t, reg, "bind", obj{"system": id, "name": "x", "rhs": mul(num("2"), named("y"))}))
	assert.Equal(t, "x = 2*y", resp.String)

	resp = mustOK(t, call(t, reg, "bind", obj{"system": id, "name": "z", "rhs": eq(named("a"), named("b"))}))
	assert.Equal(t, "z = a; z = b", resp.String)

	resp = mustOK(t, call(t, reg, "bind", obj{"system": id, "index": 1, "rhs": tuple(num("1"), num("2"))}))
	assert.Equal(t, "_1 = 1; _1 = 2", resp.String)

	resp = mustOK(t, call(t, reg, "lookup", obj{"system": id, "name": "x"}))
	assert.Equal(t, "x = 2*y", resp.String)
	items, ok := resp.Result.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	resp = call(t, reg, "lookup", obj{"system": id, "name": "y"})
	assert.Contains(t, resp.Error, "KEY_NOT_FOUND")
	resp = call(t, reg, "lookup", obj{"system": id, "name": "never"})
	assert.Contains(t, resp.Error, "KEY_NOT_FOUND")

	resp = mustOK(t, call(t, reg, "equations", obj{"system": id}))
	assert.Equal(t, "x = 2*y; z = a; z = b; _1 = 1; _1 = 2", resp.String)
}

func TestToolBindRange(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)

	resp := mustOK(t, call(t, reg, "bind_range", obj{
		"system": id, "stop": 2,
		"values": []obj{mul(num("2"), named("x")), indexed(5)},
	}))
	assert.Equal(t, "_0 = 2*x; _1 = _5", resp.String)

	resp = call(t, reg, "bind_range", obj{"system": id, "stop": 3, "values": []obj{num("1")}})
	assert.Contains(t, resp.Error, "ARITY_MISMATCH")

	resp = call(t, reg, "bind_range", obj{"system": id, "values": []obj{num("1")}})
	assert.Contains(t, resp.Error, "CONFIG")
}

func TestToolRangeLimit(t *testing.T) {
	reg := tools.NewRegistry(nil, tools.WithMaxRange(3))
	id := create(t, reg, nil)

	mustOK(t, call(t, reg, "variable_range", obj{"system": id, "stop": 3}))

	resp := call(t, reg, "variable_range", obj{"system": id, "stop": 4})
	assert.Contains(t, resp.Error, "limit is 3")

	resp = call(t, reg, "bind_range", obj{"system": id, "stop": 1 << 40, "values": []obj{num("1")}})
	assert.Contains(t, resp.Error, "limit is 3")

	resp = call(t, reg, "variable_range", obj{"system": id, "start": math.MaxInt - 1, "stop": math.MaxInt, "step": 2})
	assert.Contains(t, resp.Error, "must be an integer")

	n := 0
	err := reg.With(id, func(sys *goeq.System) error {
		n = sys.Inner().Namespace.Len()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestToolIndexOutOfRange(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)

	resp := call(t, reg, "variable", obj{"system": id, "index": 1e300})
	assert.Contains(t, resp.Error, "must be an integer")

	resp = call(t, reg, "bind", obj{"system": id, "name": "x", "rhs": obj{"type": "var", "index": -1e300}})
	assert.Contains(t, resp.Error, "out of range")
}

func TestToolContainsAndUserStore(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)

	mustOK(t, call(t, reg, "bind", obj{"system": id, "name": "x", "rhs": named("y")}))
	mustOK(t, call(t, reg, "user_set", obj{"system": id, "key": "note", "value": obj{"a": 1.0}}))

	cases := []struct {
		params obj
		want   bool
	}{
		{obj{"name": "x"}, true},
		{obj{"name": "y"}, false},
		{obj{"name": "unseen"}, false},
		{obj{"user_key": "note"}, true},
		{obj{"user_key": "x"}, false},
	}
	for _, c := range cases {
		c.params["system"] = id
		resp := mustOK(t, call(t, reg, "contains", c.params))
		assert.Equal(t, c.want, resp.Result, "%v", c.params)
	}

	resp := mustOK(t, call(t, reg, "user_get", obj{"system": id, "key": "note"}))
	assert.Equal(t, obj{"a": 1.0}, resp.Result)

	resp = call(t, reg, "user_get", obj{"system": id, "key": "missing"})
	assert.Contains(t, resp.Error, "KEY_NOT_FOUND")
}

func TestToolAssume(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)

	resp := mustOK(t, call(t, reg, "assume", obj{"system": id, "relation": rel(">", named("x"), num("0"))}))
	assert.Equal(t, "x > 0", resp.String)

	resp = mustOK(t, call(t, reg, "assume", obj{"system": id, "flag": "real"}))
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]bool{"real": true}, result["flags"])

	resp = call(t, reg, "assume", obj{"system": id})
	assert.Contains(t, resp.Error, "relation or flag")

	resp = mustOK(t, call(t, reg, "equations", obj{"system": id}))
	assert.Empty(t, resp.Result)
}

func TestToolSystemErrors(t *testing.T) {
	reg := tools.NewRegistry(nil)

	resp := call(t, reg, "equations", obj{"system": "not-a-uuid"})
	assert.Contains(t, resp.Error, "system id")

	resp = call(t, reg, "equations", obj{"system": "6f1c2a8e-2b7a-4a57-9d55-0d6b7a0f7f11"})
	assert.Equal(t, tools.ErrSystemNotFound.Error(), resp.Error)

	resp = call(t, reg, "system_create", obj{"naming": obj{"prefix_include": []interface{}{"a"}, "prefix_exclude": []interface{}{"b"}}})
	assert.Contains(t, resp.Error, "CONFIG")

	resp = call(t, reg, "system_create", obj{"naming": obj{"prefx": "a"}})
	assert.Contains(t, resp.Error, "param naming")

	resp = call(t, reg, "no_such_tool", nil)
	assert.Equal(t, "unknown tool: no_such_tool", resp.Error)
}

func TestToolSystemDelete(t *testing.T) {
	reg := tools.NewRegistry(nil)
	id := create(t, reg, nil)
	mustOK(t, call(t, reg, "system_delete", obj{"system": id}))
	resp := call(t, reg, "system_delete", obj{"system": id})
	assert.Equal(t, tools.ErrSystemNotFound.Error(), resp.Error)
}

func TestToolSpec(t *testing.T) {
	spec := tools.ToolSpec()
	list, ok := spec["tools"].([]map[string]interface{})
	require.True(t, ok)

	names := map[string]bool{}
	for _, tool := range list {
		names[tool["name"].(string)] = true
		schema := tool["inputSchema"].(map[string]interface{})
		assert.Equal(t, "object", schema["type"])
	}
	for _, want := range []string{
		"system_create", "system_delete", "variable", "variable_range", "bind", "bind_range",
		"lookup", "equations", "contains", "user_set", "user_get", "assume", "tool_spec",
	} {
		assert.True(t, names[want], want)
	}

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(tools.ToolSpecJSON()), &decoded))
	resp := mustOK(t, call(t, tools.NewRegistry(nil), "tool_spec", nil))
	assert.NotNil(t, resp.Result)
}
