package tools

import (
	"encoding/json"
	"slices"
)

type toolDef struct {
	name        string
	description string
	required    []string
	props       map[string]string
}

var toolDefs = []toolDef{
	{"system_create", "Create a system. Optional naming: {prefix, prefix_include|prefix_exclude, suffix, suffix_include|suffix_exclude, dummies}",
		nil, map[string]string{"naming": "object"}},
	{"system_delete", "Delete a system", []string{"system"}, map[string]string{"system": "string"}},
	{"variable", "Resolve the variable for a name or integer index", []string{"system"},
		map[string]string{"system": "string", "name": "string", "index": "integer"}},
	{"variable_range", "Resolve the variables for start:stop:step (stop required)", []string{"system", "stop"},
		map[string]string{"system": "string", "start": "integer", "stop": "integer", "step": "integer"}},
	{"bind", "Bind a variable to rhs. An equation rhs yields two equations, a tuple one per element", []string{"system", "rhs"},
		map[string]string{"system": "string", "name": "string", "index": "integer", "rhs": "object"}},
	{"bind_range", "Bind each index of start:stop:step to the matching value", []string{"system", "stop", "values"},
		map[string]string{"system": "string", "start": "integer", "stop": "integer", "step": "integer", "values": "array"}},
	{"lookup", "Equations bound to a variable", []string{"system"},
		map[string]string{"system": "string", "name": "string", "index": "integer"}},
	{"equations", "Every bound equation in binding order", []string{"system"}, map[string]string{"system": "string"}},
	{"contains", "Whether a variable is bound or a user key is set", []string{"system"},
		map[string]string{"system": "string", "name": "string", "index": "integer", "user_key": "string"}},
	{"user_set", "Store a user value under a string key", []string{"system", "key", "value"},
		map[string]string{"system": "string", "key": "string", "value": "object"}},
	{"user_get", "Read a user value", []string{"system", "key"}, map[string]string{"system": "string", "key": "string"}},
	{"assume", "Record a relation or a named flag. Assumptions do not affect binding", []string{"system"},
		map[string]string{"system": "string", "relation": "object", "flag": "string", "value": "boolean"}},
	{"tool_spec", "Return this tool schema", nil, map[string]string{}},
}

func isKnownTool(name string) bool {
	return slices.ContainsFunc(toolDefs, func(d toolDef) bool { return d.name == name })
}

// ToolSpec returns the tool schema for agent registration.
func ToolSpec() map[string]interface{} {
	tools := make([]map[string]interface{}, len(toolDefs))
	for i, d := range toolDefs {
		tools[i] = map[string]interface{}{
			"name":        d.name,
			"description": d.description,
			"inputSchema": d.inputSchema(),
		}
	}
	return map[string]interface{}{"tools": tools}
}

// ToolSpecJSON is ToolSpec rendered as indented JSON.
func ToolSpecJSON() string {
	b, _ := json.MarshalIndent(ToolSpec(), "", "  ")
	return string(b)
}

func (d toolDef) inputSchema() map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range d.props {
		if typ == "object" && k == "value" {
			// user values may be any JSON value
			properties[k] = map[string]interface{}{}
			continue
		}
		properties[k] = map[string]interface{}{"type": typ}
	}
	required := d.required
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
