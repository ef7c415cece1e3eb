// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocumentExt is the file extension of every document the resolver reads.
const DocumentExt = ".yaml"

// LoadDocument reads a YAML file whose top level is a mapping and returns it
// as a Node tree. An empty file yields an empty Node.
func LoadDocument(path string) (*Node, error) {
	v, err := readDocument(os.ReadFile, path)
	if err != nil {
		return nil, err
	}
	return rootNode(v, path)
}

// ParseDocument parses a single YAML document into tree form: mappings become
// *Node values (preserving key order), sequences []any, and scalars their Go
// values. An empty document yields nil.
func ParseDocument(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&yaml.Node{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: multiple documents or trailing content", ErrParse)
	}

	return newConverter().node(&doc)
}

func readDocument(readFile func(string) ([]byte, error), path string) (any, error) {
	path = filepath.Clean(path)

	// #nosec G304 -- document paths are composed from operator-supplied directories
	data, err := readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
		}
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	v, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func rootNode(v any, path string) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return NewNode(), nil
	case *Node:
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s: top level must be a mapping, got %T", ErrParse, path, v)
}

// converter turns a yaml.Node tree into Node form. It refuses anchors that
// contain themselves and documents whose alias expansion dwarfs their size,
// using the same limits as yaml.v3's decoder.
type converter struct {
	active     map[*yaml.Node]bool
	aliasDepth int
	decoded    int
	aliased    int
}

func newConverter() *converter {
	return &converter{active: make(map[*yaml.Node]bool)}
}

const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)
)

// allowedAliasRatio tolerates heavy aliasing in small documents and tightens
// linearly as the document grows.
func allowedAliasRatio(decoded int) float64 {
	switch {
	case decoded <= aliasRatioRangeLow:
		return 0.99
	case decoded >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decoded-aliasRatioRangeLow)/aliasRatioRange)
	}
}

func (c *converter) node(n *yaml.Node) (any, error) {
	c.decoded++
	if c.aliasDepth > 0 {
		c.aliased++
	}
	if c.aliased > 100 && c.decoded > 1000 &&
		float64(c.aliased)/float64(c.decoded) > allowedAliasRatio(c.decoded) {
		return nil, fmt.Errorf("%w: line %d: document contains excessive aliasing", ErrParse, n.Line)
	}

	if n.Anchor != "" {
		c.active[n] = true
		defer delete(c.active, n)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.node(n.Content[0])
	case yaml.MappingNode:
		return c.mapping(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.node(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, n.Line, err)
		}
		return v, nil
	case yaml.AliasNode:
		return c.alias(n)
	}
	return nil, fmt.Errorf("%w: line %d: unsupported node kind %d", ErrParse, n.Line, n.Kind)
}

func (c *converter) alias(n *yaml.Node) (any, error) {
	if n.Alias == nil {
		return nil, fmt.Errorf("%w: line %d: unknown anchor %q", ErrParse, n.Line, n.Value)
	}
	if c.active[n.Alias] {
		return nil, fmt.Errorf("%w: line %d: anchor %q contains itself", ErrParse, n.Line, n.Value)
	}
	c.aliasDepth++
	defer func() { c.aliasDepth-- }()
	return c.node(n.Alias)
}

// mapping builds a Node from a mapping. Keys brought in through "<<" merge
// keys never override explicit keys; among several merged mappings the first
// one listed wins.
func (c *converter) mapping(n *yaml.Node) (*Node, error) {
	out := NewNode()
	explicit := make(map[string]int)
	var merged []*Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if isMergeKey(k) {
			sources, err := c.mergeSources(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, sources...)
			continue
		}

		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: mapping keys must be scalars", ErrParse, k.Line)
		}
		if line, dup := explicit[k.Value]; dup {
			return nil, fmt.Errorf("%w: line %d: mapping key %q already defined at line %d", ErrParse, k.Line, k.Value, line)
		}
		explicit[k.Value] = k.Line

		val, err := c.node(v)
		if err != nil {
			return nil, err
		}
		out.put(k.Value, val)
	}

	// Sources were converted for this mapping alone, so they are not copied.
	for _, src := range merged {
		for _, key := range src.keys {
			if !out.Has(key) {
				out.put(key, src.values[key])
			}
		}
	}
	return out, nil
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == "<<" && k.ShortTag() == "!!merge"
}

func (c *converter) mergeSources(v *yaml.Node) ([]*Node, error) {
	if v.Kind == yaml.SequenceNode {
		var out []*Node
		for _, item := range v.Content {
			srcs, err := c.mergeSources(item)
			if err != nil {
				return nil, err
			}
			out = append(out, srcs...)
		}
		return out, nil
	}

	conv, err := c.node(v)
	if err != nil {
		return nil, err
	}
	node, ok := conv.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: line %d: merge key value must be a mapping", ErrParse, v.Line)
	}
	return []*Node{node}, nil
}
