// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "fmt"

// Update overwrites n's entries with every key of other, without recursing
// into nested Nodes. other must be a *Node or a string-keyed map.
func (n *Node) Update(other any) error {
	src, ok := asNode(other)
	if !ok {
		return fmt.Errorf("%w: update argument must be a mapping or *Node, got %T", ErrInvalidArgument, other)
	}
	for _, k := range src.Keys() {
		n.Set(k, src.values[k])
	}
	return nil
}

// Merge is the recursive form of Update: where both the current value and the
// incoming value at a key are mappings, they are merged key by key. Any other
// combination, including a scalar meeting a mapping, overwrites.
func (n *Node) Merge(other any) error {
	src, ok := asNode(other)
	if !ok {
		return fmt.Errorf("%w: merge argument must be a mapping or *Node, got %T", ErrInvalidArgument, other)
	}
	n.merge(src)
	return nil
}

func (n *Node) merge(src *Node) {
	for _, k := range src.Keys() {
		incoming := src.values[k]
		if in, ok := incoming.(*Node); ok {
			if cur, ok := n.values[k].(*Node); ok {
				cur.merge(in)
				continue
			}
		}
		n.Set(k, incoming)
	}
}
