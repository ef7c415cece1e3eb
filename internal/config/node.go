// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Node is one level of a configuration tree: an ordered mapping from string
// keys to scalars, []any sequences or nested *Node values.
//
// Every mapping stored in a Node, at any depth and inside sequences, is itself
// a *Node. Nested Nodes are owned by their parent: inserting a *Node stores a
// deep copy. A Node is not safe for concurrent mutation.
//
// The zero value is an empty, usable Node.
type Node struct {
	keys   []string
	values map[string]any
}

// Item is a key/value pair as returned by Node.Items.
type Item struct {
	Key   string
	Value any
}

// NewNode returns an empty Node.
func NewNode() *Node {
	return &Node{values: make(map[string]any)}
}

// FromMap wraps a plain map into a Node tree. Go maps are unordered, so keys
// are inserted in sorted order.
func FromMap(m map[string]any) *Node {
	n := &Node{values: make(map[string]any, len(m))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.put(k, Wrap(m[k]))
	}
	return n
}

// Wrap converts v into its tree form: mappings become fresh *Node values,
// sequences are walked element by element and scalars are returned unchanged.
// A *Node argument is deep-copied.
func Wrap(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Node:
		if t == nil {
			return nil
		}
		return t.Clone()
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Wrap(t[i])
		}
		return out
	case string, bool, int, int64, float64:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if n, ok := reflectMap(rv); ok {
			return n
		}
	case reflect.Slice, reflect.Array:
		if needsWalk(rv.Type().Elem()) {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = Wrap(rv.Index(i).Interface())
			}
			return out
		}
		return copySlice(v)
	}
	return v
}

// copySlice returns a shallow copy of a typed slice of scalars. Any other
// value is returned unchanged.
func copySlice(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}

// asNode returns other as a *Node without copying when it already is one,
// converting string-keyed maps otherwise.
func asNode(other any) (*Node, bool) {
	switch t := other.(type) {
	case *Node:
		return t, t != nil
	case map[string]any:
		return FromMap(t), true
	}
	rv := reflect.ValueOf(other)
	if rv.Kind() == reflect.Map {
		return reflectMap(rv)
	}
	return nil, false
}

// ownedNode is asNode but never returns the caller's *Node.
func ownedNode(other any) (*Node, bool) {
	if t, ok := other.(*Node); ok {
		if t == nil {
			return nil, false
		}
		return t.Clone(), true
	}
	return asNode(other)
}

func reflectMap(rv reflect.Value) (*Node, bool) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return NewNode(), true
	}
	m := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		m[it.Key().String()] = it.Value().Interface()
	}
	return FromMap(m), true
}

func needsWalk(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		return true
	}
	return false
}

func (n *Node) put(key string, value any) {
	if n.values == nil {
		n.values = make(map[string]any)
	}
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// Get returns the value stored at key, or nil if the key is absent.
func (n *Node) Get(key string) any {
	return n.values[key]
}

// GetOr returns the value stored at key, or def if the key is absent.
func (n *Node) GetOr(key string, def any) any {
	if v, ok := n.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value stored at key and whether it was present.
func (n *Node) Lookup(key string) (any, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Attr is the attribute-style accessor: unlike Get it fails on a missing key.
func (n *Node) Attr(key string) (any, error) {
	v, ok := n.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, key)
	}
	return v, nil
}

// SetAttr is the attribute-style setter. It behaves exactly like Set.
func (n *Node) SetAttr(key string, value any) {
	n.Set(key, value)
}

// Set inserts or overwrites key. Mappings in value are wrapped into Nodes.
// Overwriting keeps the key's original position.
func (n *Node) Set(key string, value any) {
	n.put(key, Wrap(value))
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

// Delete removes key.
func (n *Node) Delete(key string) error {
	if _, ok := n.values[key]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(n.values, key)
	if i := slices.Index(n.keys, key); i >= 0 {
		n.keys = slices.Delete(n.keys, i, i+1)
	}
	return nil
}

func (n *Node) Len() int { return len(n.keys) }

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	return slices.Clone(n.keys)
}

// Items returns the key/value pairs in insertion order.
func (n *Node) Items() []Item {
	items := make([]Item, 0, len(n.keys))
	for _, k := range n.keys {
		items = append(items, Item{Key: k, Value: n.values[k]})
	}
	return items
}

// All iterates over the key/value pairs in insertion order.
func (n *Node) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range n.Keys() {
			if !yield(k, n.values[k]) {
				return
			}
		}
	}
}

// At walks nested Nodes along path and returns the value found there.
func (n *Node) At(path ...string) (any, bool) {
	var cur any = n
	for _, key := range path {
		node, ok := cur.(*Node)
		if !ok {
			return nil, false
		}
		if cur, ok = node.values[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	out := &Node{
		keys:   slices.Clone(n.keys),
		values: make(map[string]any, len(n.values)),
	}
	for k, v := range n.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	}
	return copySlice(v)
}

// ToPlain unwraps the tree into nested map[string]any and []any values.
// It is the inverse of FromMap.
func (n *Node) ToPlain() map[string]any {
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		out[k] = Unwrap(n.values[k])
	}
	return out
}

// Unwrap returns the plain form of a tree value: Nodes become maps, sequences
// are unwrapped element by element and scalars are returned unchanged.
func Unwrap(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.ToPlain()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Unwrap(t[i])
		}
		return out
	}
	return copySlice(v)
}

// String renders the tree in insertion order, e.g. {a: 1, b: {c: "x"}}.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		writeValue(sb, n.values[k])
	}
	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case *Node:
		t.writeTo(sb)
	case []any:
		sb.WriteByte('[')
		for i := range t {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, t[i])
		}
		sb.WriteByte(']')
	case string:
		fmt.Fprintf(sb, "%q", t)
	case nil:
		sb.WriteString("null")
	default:
		fmt.Fprintf(sb, "%v", t)
	}
}
