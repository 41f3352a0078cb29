// Package level implements the navigation frame a Cursor pushes and
// pops as it descends into groups and array elements: an ordered list
// of Node atoms (one per layered Source/fallback), plus a flag marking
// whether the frame denotes an array element.
//
// By construction the first atom, when present, is the only one a
// navigation call is allowed to mutate or grow; every atom after it is
// treated as read-only for the purposes of this frame even if the
// underlying Node is itself writable — that is what keeps a lower
// layer from leaking writes into an upper one (spec'd precedence:
// "only the top layer may be written through").
package level

import "github.com/houmingc/qutim/node"

type Level struct {
	Atoms        []*node.Node
	ArrayElement bool
}

func New(atoms []*node.Node) *Level {
	return &Level{Atoms: atoms}
}

// Child descends into the Map entry named key on every atom, forcing
// every atom after the first to read-only navigation.
func (l *Level) Child(key string) *Level {
	return l.mapAtoms(func(atom *node.Node, forceReadOnly bool) *node.Node {
		return childAtom(atom, key, forceReadOnly)
	})
}

// ChildAt descends into the List entry at index on every atom,
// forcing every atom after the first to read-only navigation.
func (l *Level) ChildAt(index int) *Level {
	return l.mapAtoms(func(atom *node.Node, forceReadOnly bool) *node.Node {
		return childAtomAt(atom, index, forceReadOnly)
	})
}

// ChildPath descends through a sequence of Map keys.
func (l *Level) ChildPath(names []string) *Level {
	cur := l
	for _, name := range names {
		cur = cur.Child(name)
	}
	return cur
}

// Convert coerces every atom to target, omitting any read-only atom
// (forced or intrinsic) whose tag doesn't already match.
func (l *Level) Convert(target node.Tag) *Level {
	return l.mapAtoms(func(atom *node.Node, forceReadOnly bool) *node.Node {
		return convertAtom(atom, target, forceReadOnly)
	})
}

func (l *Level) mapAtoms(f func(atom *node.Node, forceReadOnly bool) *node.Node) *Level {
	out := &Level{}
	for i, atom := range l.Atoms {
		if result := f(atom, i > 0); result != nil {
			out.Atoms = append(out.Atoms, result)
		}
	}
	return out
}

func childAtom(atom *node.Node, key string, forceReadOnly bool) *node.Node {
	if forceReadOnly || atom.IsReadOnly() {
		return atom.PeekChild(key)
	}
	return atom.Child(key)
}

func childAtomAt(atom *node.Node, index int, forceReadOnly bool) *node.Node {
	if forceReadOnly || atom.IsReadOnly() {
		return atom.PeekChildAt(index)
	}
	return atom.ChildAt(index)
}

func convertAtom(atom *node.Node, target node.Tag, forceReadOnly bool) *node.Node {
	if forceReadOnly || atom.IsReadOnly() {
		if atom.Tag() != target {
			return nil
		}
		return atom
	}
	if atom.Tag() != target {
		atom.Convert(target)
	}
	return atom
}

// IterateMap calls cb for each (key, child) pair of every atom that is
// a Map, in atom order, without forcing read-only (reading never needs
// it).
func (l *Level) IterateMap(cb func(key string, child *node.Node)) {
	for _, atom := range l.Atoms {
		if atom.IsMap() {
			atom.IterateMap(cb)
		}
	}
}
