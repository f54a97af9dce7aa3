package builtwith

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Profile is a decoded BuiltWith response. It keeps the raw document so object
// key order survives every traversal and re-serialization.
type Profile struct {
	raw  []byte
	root gjson.Result
}

// Parse validates raw and wraps it as a Profile. It does not care whether the
// bytes came from the API or from a saved file.
func Parse(raw []byte) (Profile, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Profile{}, errors.Wrap(ErrInvalidJSON, "empty document")
	}
	if !gjson.ValidBytes(trimmed) {
		var probe any
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return Profile{}, errors.Wrap(ErrInvalidJSON, err.Error())
		}
		return Profile{}, errors.WithStack(ErrInvalidJSON)
	}
	return Profile{raw: trimmed, root: gjson.ParseBytes(trimmed)}, nil
}

func (p Profile) Root() gjson.Result {
	return p.root
}

func (p Profile) IsZero() bool {
	return len(p.raw) == 0
}

// Pretty returns the document indented by two spaces, keys in source order.
func (p Profile) Pretty() []byte {
	return pretty.Pretty(p.raw)
}

// Compact returns the document without insignificant whitespace.
func (p Profile) Compact() []byte {
	return pretty.Ugly(p.raw)
}

// YAML renders the document as YAML, keeping key order.
func (p Profile) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(p.root)); err != nil {
		return nil, errors.Wrap(err, "failed to encode profile as yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode profile as yaml")
	}
	return buf.Bytes(), nil
}

// TopLevelKeys lists the root object's keys in document order.
func (p Profile) TopLevelKeys() []string {
	keys := []string{}
	if !p.root.IsObject() {
		return keys
	}
	p.root.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// APIErrors returns the entries of a non-empty top-level "Errors" array.
// BuiltWith reports lookup problems there while still answering 200.
func (p Profile) APIErrors() []gjson.Result {
	errs := p.root.Get("Errors")
	if !errs.IsArray() {
		return nil
	}
	return errs.Array()
}

// APIErrorsPretty renders APIErrors as indented JSON, or "" when there are none.
func (p Profile) APIErrorsPretty() string {
	if len(p.APIErrors()) == 0 {
		return ""
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(p.root.Get("Errors").Raw))), "\n")
}

func yamlNode(r gjson.Result) *yaml.Node {
	switch {
	case r.IsObject():
		node := &yaml.Node{Kind: yaml.MappingNode}
		r.ForEach(func(key, value gjson.Result) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
				yamlNode(value),
			)
			return true
		})
		return node
	case r.IsArray():
		node := &yaml.Node{Kind: yaml.SequenceNode}
		r.ForEach(func(_, value gjson.Result) bool {
			node.Content = append(node.Content, yamlNode(value))
			return true
		})
		return node
	}

	switch r.Type {
	case gjson.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: r.String()}
	case gjson.Number:
		tag := "!!int"
		if strings.ContainsAny(r.Raw, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: r.Raw}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.String()}
	}
}
