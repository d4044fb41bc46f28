package goeq

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Key identifies a variable within a Namespace: either a name or an integer
// index. The name "2" and the index 2 are different keys.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// Name returns a name key.
func Name(name string) Key { return Key{name: name} }

// Index returns an integer index key.
func Index(i int) Key { return Key{index: i, isIndex: true} }

// Names returns one name key per argument.
func Names(names ...string) []Key {
	keys := make([]Key, len(names))
	for i, n := range names {
		keys[i] = Name(n)
	}
	return keys
}

// Indices returns one index key per argument.
func Indices(indices ...int) []Key {
	keys := make([]Key, len(indices))
	for i, n := range indices {
		keys[i] = Index(n)
	}
	return keys
}

// KeyOf converts a string or Go integer into a Key.
func KeyOf(v any) (Key, error) {
	switch k := v.(type) {
	case Key:
		return k, nil
	case string:
		return Name(k), nil
	}
	if i, ok, err := asIndex(v); err != nil {
		return Key{}, err
	} else if ok {
		return Index(i), nil
	}
	return Key{}, newError(CodeInvalidKey, fmt.Sprint(v), "%T is not a variable key", v)
}

func (k Key) IsIndex() bool { return k.isIndex }

// Name returns the key's name; empty for index keys.
func (k Key) Name() string { return k.name }

// Index returns the key's index; zero for name keys.
func (k Key) Index() int { return k.index }

// String renders the key undecorated: the name, or the index in decimal.
func (k Key) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// GoString distinguishes index keys from numeric-looking names.
func (k Key) GoString() string {
	if k.isIndex {
		return fmt.Sprintf("goeq.Index(%d)", k.index)
	}
	return fmt.Sprintf("goeq.Name(%q)", k.name)
}

// UnmarshalYAML reads an integer-tagged scalar as an index key and any other
// scalar as a name key, so `[x, 1, "2"]` holds two names and one index.
func (k *Key) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: variable key must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!int" {
		var i int
		if err := node.Decode(&i); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*k = Index(i)
		return nil
	}
	*k = Name(node.Value)
	return nil
}

// MarshalYAML writes index keys as integers and names as strings.
func (k Key) MarshalYAML() (interface{}, error) {
	if k.isIndex {
		return k.index, nil
	}
	return k.name, nil
}

// UnmarshalJSON reads a JSON number as an index key and a string as a name.
func (k *Key) UnmarshalJSON(data []byte) error {
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*k = Index(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("variable key must be a string or an integer")
	}
	*k = Name(s)
	return nil
}

// MarshalJSON writes index keys as numbers and names as strings.
func (k Key) MarshalJSON() ([]byte, error) {
	if k.isIndex {
		return json.Marshal(k.index)
	}
	return json.Marshal(k.name)
}

type keySet map[Key]struct{}

func newKeySet(keys []Key) keySet {
	s := make(keySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s keySet) has(k Key) bool {
	_, ok := s[k]
	return ok
}
