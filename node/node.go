// Package node implements the tagged configuration value that every
// Source, Level and Cursor in this module is built out of: a Map, a
// List, a Scalar or Null, each carrying a read-only flag that is fixed
// at construction and propagates to every child reached by navigation.
package node

import (
	"encoding/json"
	"fmt"
)

// Tag identifies which of a Node's payloads is inhabited.
type Tag int

const (
	NullTag Tag = iota
	MapTag
	ListTag
	ScalarTag
)

func (t Tag) String() string {
	switch t {
	case MapTag:
		return "Map"
	case ListTag:
		return "List"
	case ScalarTag:
		return "Scalar"
	case NullTag:
		return "Null"
	default:
		return "<unknown tag>"
	}
}

// Node is the sum type Map⟨string→Node⟩ | List⟨Node⟩ | Scalar | Null.
// A Node's read-only flag is set once, at construction, and every
// child a navigation call hands back inherits it.
type Node struct {
	tag      Tag
	readOnly bool

	keys   []string
	fields map[string]*Node

	list []*Node

	scalar any
}

// New returns a Null node with the given read-only flag.
func New(readOnly bool) *Node {
	return &Node{tag: NullTag, readOnly: readOnly}
}

func (n *Node) Tag() Tag         { return n.tag }
func (n *Node) IsReadOnly() bool { return n.readOnly }
func (n *Node) IsMap() bool      { return n.tag == MapTag }
func (n *Node) IsList() bool     { return n.tag == ListTag }
func (n *Node) IsScalar() bool   { return n.tag == ScalarTag }
func (n *Node) IsNull() bool     { return n.tag == NullTag }

// AsScalar asserts the node is a Scalar and returns its payload.
func (n *Node) AsScalar() any {
	if n.tag != ScalarTag {
		panic(fmt.Sprintf("node: AsScalar on a %s node", n.tag))
	}
	return n.scalar
}

// Child navigates to the Map entry named key. On a writable Map it
// creates a fresh Null child when key is absent (converting the
// receiver to a Map first if it wasn't already one, destroying any
// prior payload). On a read-only node it returns nil unless the
// receiver is already a Map containing key.
func (n *Node) Child(key string) *Node {
	if n.readOnly {
		if n.tag != MapTag {
			return nil
		}
		return n.fields[key]
	}
	if n.tag != MapTag {
		n.convertInPlace(MapTag)
	}
	if child, ok := n.fields[key]; ok {
		return child
	}
	child := New(false)
	n.keys = append(n.keys, key)
	n.fields[key] = child
	return child
}

// ChildAt navigates to the List entry at index. On a writable List it
// grows the list with Null entries up to index inclusive (converting
// the receiver to a List first if needed). On a read-only node it
// returns nil when index is out of range or the receiver is not a List.
func (n *Node) ChildAt(index int) *Node {
	if n.readOnly {
		if n.tag != ListTag || index < 0 || index >= len(n.list) {
			return nil
		}
		return n.list[index]
	}
	if index < 0 {
		panic("node: negative list index")
	}
	if n.tag != ListTag {
		n.convertInPlace(ListTag)
	}
	for len(n.list) <= index {
		n.list = append(n.list, New(false))
	}
	return n.list[index]
}

// PeekChild looks up the Map entry named key without ever mutating
// the receiver — used when a navigation layer must be forced
// read-only regardless of the node's own read-only flag (see the
// level package).
func (n *Node) PeekChild(key string) *Node {
	if n.tag != MapTag {
		return nil
	}
	return n.fields[key]
}

// PeekChildAt looks up the List entry at index without ever mutating
// the receiver. See PeekChild.
func (n *Node) PeekChildAt(index int) *Node {
	if n.tag != ListTag || index < 0 || index >= len(n.list) {
		return nil
	}
	return n.list[index]
}

// ArraySize asserts the node is a List and returns its length.
func (n *Node) ArraySize() int {
	if n.tag != ListTag {
		panic(fmt.Sprintf("node: ArraySize on a %s node", n.tag))
	}
	return len(n.list)
}

// Remove deletes the Map entry named key, reporting whether it existed.
func (n *Node) Remove(key string) bool {
	if n.tag != MapTag {
		panic(fmt.Sprintf("node: Remove(key) on a %s node", n.tag))
	}
	if _, ok := n.fields[key]; !ok {
		return false
	}
	delete(n.fields, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// RemoveAt deletes the List entry at index, reporting whether index
// was in range (the OutOfRange case of spec §7 surfaces as false here).
func (n *Node) RemoveAt(index int) bool {
	if n.tag != ListTag {
		panic(fmt.Sprintf("node: RemoveAt(index) on a %s node", n.tag))
	}
	if index < 0 || index >= len(n.list) {
		return false
	}
	n.list = append(n.list[:index], n.list[index+1:]...)
	return true
}

// ReplaceChild sets the Map entry named key to newChild, returning
// whether the stored tree value actually changed. No-op writes (the
// materialized value is unchanged) leave the node untouched so callers
// never flip a dirty bit for them.
func (n *Node) ReplaceChild(key string, newChild *Node) bool {
	if n.tag != MapTag {
		panic(fmt.Sprintf("node: ReplaceChild on a %s node", n.tag))
	}
	old, ok := n.fields[key]
	if ok && treeEqual(old.ToTree(), newChild.ToTree()) {
		return false
	}
	if !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = newChild
	return true
}

// IterateMap calls cb for each (key, child) pair in insertion order.
// Asserts the node is a Map.
func (n *Node) IterateMap(cb func(key string, child *Node)) {
	if n.tag != MapTag {
		panic(fmt.Sprintf("node: IterateMap on a %s node", n.tag))
	}
	for _, k := range n.keys {
		cb(k, n.fields[k])
	}
}

// Convert coerces the node's tag to target, clearing any prior
// payload. Null→anything is always allowed when writable; any other
// transition discards data. Converting a read-only node whose tag
// already matches is a no-op; any other conversion of a read-only node
// panics.
func (n *Node) Convert(target Tag) {
	if n.tag == target {
		return
	}
	if n.readOnly {
		panic(fmt.Sprintf("node: Convert(%s) on read-only %s node", target, n.tag))
	}
	n.convertInPlace(target)
}

func (n *Node) convertInPlace(target Tag) {
	n.tag = target
	n.fields = nil
	n.keys = nil
	n.list = nil
	n.scalar = nil
	switch target {
	case MapTag:
		n.fields = map[string]*Node{}
	case ListTag:
		n.list = []*Node{}
	case ScalarTag:
		// scalar left nil until a value is assigned via FromTree.
	case NullTag:
	}
}

// SetScalar converts the node to a Scalar carrying v. Panics on a
// read-only node.
func (n *Node) SetScalar(v any) {
	if n.readOnly {
		panic("node: SetScalar on read-only node")
	}
	n.tag = ScalarTag
	n.fields = nil
	n.keys = nil
	n.list = nil
	n.scalar = v
}

// ToTree materializes the node into a generic tree value — map[string]any,
// []any, a scalar, or nil — for handoff to a Backend.
func (n *Node) ToTree() any {
	switch n.tag {
	case MapTag:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].ToTree()
		}
		return out
	case ListTag:
		out := make([]any, len(n.list))
		for i, c := range n.list {
			out[i] = c.ToTree()
		}
		return out
	case ScalarTag:
		return n.scalar
	default:
		return nil
	}
}

// FromTree builds a Node tree from a generic tree value (as decoded by
// a Backend), applying readOnly to every node in the resulting subtree.
func FromTree(tree any, readOnly bool) *Node {
	n := New(readOnly)
	switch v := tree.(type) {
	case nil:
		return n
	case map[string]any:
		n.tag = MapTag
		n.fields = make(map[string]*Node, len(v))
		n.keys = make([]string, 0, len(v))
		for k, val := range v {
			n.keys = append(n.keys, k)
			n.fields[k] = FromTree(val, readOnly)
		}
	case []any:
		n.tag = ListTag
		n.list = make([]*Node, len(v))
		for i, val := range v {
			n.list[i] = FromTree(val, readOnly)
		}
	default:
		n.tag = ScalarTag
		n.scalar = v
	}
	return n
}

// Clone returns a deep, independently-mutable (if writable) copy of n.
func (n *Node) Clone() *Node {
	return FromTree(n.ToTree(), n.readOnly)
}

// toDebugString renders n's materialized tree as JSON, for the
// debugflag-gated logging in internal/confdebug. Falls back to %v if
// the tree contains something JSON can't encode.
func (n *Node) toDebugString() string {
	data, err := json.Marshal(n.ToTree())
	if err != nil {
		return fmt.Sprintf("%v", n.ToTree())
	}
	return string(data)
}

// String implements fmt.Stringer via toDebugString, so a Node passed
// to a %s/%v verb in a confdebug.Logf call prints its tree.
func (n *Node) String() string { return n.toDebugString() }

func treeEqual(a, b any) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !treeEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, v := range av {
			if !treeEqual(v, bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
