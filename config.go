package goeq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config configures the naming rules of a System.
//
// Include and exclude lists on the same side are mutually exclusive. With
// both empty, the prefix (or suffix) applies to every key.
type Config struct {
	Prefix        string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	PrefixInclude []Key  `yaml:"prefix_include,omitempty" json:"prefix_include,omitempty"`
	PrefixExclude []Key  `yaml:"prefix_exclude,omitempty" json:"prefix_exclude,omitempty"`
	Suffix        string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	SuffixInclude []Key  `yaml:"suffix_include,omitempty" json:"suffix_include,omitempty"`
	SuffixExclude []Key  `yaml:"suffix_exclude,omitempty" json:"suffix_exclude,omitempty"`

	// Dummies selects which name keys become dummy variables. Index keys
	// are always dummies.
	Dummies DummyPolicy `yaml:"dummies,omitempty" json:"dummies,omitempty"`
}

// DummyPolicy is either "all names" or an explicit key set.
type DummyPolicy struct {
	All  bool
	Keys []Key
}

// AllDummies makes every variable a dummy.
func AllDummies() DummyPolicy { return DummyPolicy{All: true} }

// DummyKeys makes the listed keys dummies.
func DummyKeys(keys ...Key) DummyPolicy { return DummyPolicy{Keys: keys} }

// IsZero reports whether the policy selects no names.
func (p DummyPolicy) IsZero() bool { return !p.All && len(p.Keys) == 0 }

// UnmarshalYAML accepts `true`, `false`, or a list of keys.
func (p *DummyPolicy) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*p = DummyPolicy{}
			return nil
		}
		var all bool
		if err := node.Decode(&all); err != nil {
			return fmt.Errorf("line %d: dummies must be a boolean or a list of keys", node.Line)
		}
		*p = DummyPolicy{All: all}
		return nil
	case yaml.SequenceNode:
		var keys []Key
		if err := node.Decode(&keys); err != nil {
			return err
		}
		*p = DummyPolicy{Keys: keys}
		return nil
	}
	return fmt.Errorf("line %d: dummies must be a boolean or a list of keys", node.Line)
}

// MarshalYAML mirrors UnmarshalYAML.
func (p DummyPolicy) MarshalYAML() (interface{}, error) {
	if p.All {
		return true, nil
	}
	if len(p.Keys) == 0 {
		return false, nil
	}
	return p.Keys, nil
}

// UnmarshalJSON accepts `true`, `false`, or an array of keys.
func (p *DummyPolicy) UnmarshalJSON(data []byte) error {
	var all bool
	if err := json.Unmarshal(data, &all); err == nil {
		*p = DummyPolicy{All: all}
		return nil
	}
	var keys []Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("dummies must be a boolean or an array of keys")
	}
	*p = DummyPolicy{Keys: keys}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (p DummyPolicy) MarshalJSON() ([]byte, error) {
	v, _ := p.MarshalYAML()
	return json.Marshal(v)
}

// Validate checks the include/exclude exclusivity rule.
func (c Config) Validate() error {
	if len(c.PrefixInclude) > 0 && len(c.PrefixExclude) > 0 {
		return newError(CodeConfig, "", "prefix_include and prefix_exclude may not both be specified")
	}
	if len(c.SuffixInclude) > 0 && len(c.SuffixExclude) > 0 {
		return newError(CodeConfig, "", "suffix_include and suffix_exclude may not both be specified")
	}
	return nil
}

// ParseConfig decodes a YAML naming configuration. Unknown fields are
// rejected. The result is validated.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfigBytes is ParseConfig over a byte slice.
func ParseConfigBytes(data []byte) (Config, error) {
	return ParseConfig(bytes.NewReader(data))
}
