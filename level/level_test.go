package level

import (
	"testing"

	"github.com/houmingc/qutim/node"
)

func TestChildAutovivifiesOnlyFirstAtom(t *testing.T) {
	top := node.FromTree(map[string]any{}, false)
	bottom := node.FromTree(map[string]any{}, false) // intrinsically writable, but second in order

	lvl := New([]*node.Node{top, bottom})
	child := lvl.Child("missing")

	if len(child.Atoms) != 1 {
		t.Fatalf("second atom must be forced read-only despite being intrinsically writable, got %d atoms", len(child.Atoms))
	}
	if child.Atoms[0].IsReadOnly() {
		t.Fatalf("first atom must remain writable")
	}
	if bottom.PeekChild("missing") != nil {
		t.Fatalf("forced-read-only navigation must not mutate the second atom")
	}
}

func TestChildReturnsPresentKeyFromSecondAtom(t *testing.T) {
	// The writable atom always autovivifies (it is a live Map being
	// navigated), so it contributes a fresh Null atom alongside
	// whatever the forced-read-only second atom already has.
	top := node.FromTree(map[string]any{}, false)
	bottom := node.FromTree(map[string]any{"k": "bottom"}, true)

	lvl := New([]*node.Node{top, bottom})
	child := lvl.Child("k")

	if len(child.Atoms) != 2 {
		t.Fatalf("expected both atoms present, got %d atoms", len(child.Atoms))
	}
	if !child.Atoms[0].IsNull() {
		t.Fatalf("expected the autovivified writable atom to be Null")
	}
	if child.Atoms[1].AsScalar() != "bottom" {
		t.Fatalf("got %v, want bottom", child.Atoms[1].AsScalar())
	}
}

func TestConvertOmitsMismatchedReadOnlyAtom(t *testing.T) {
	scalarAtom := node.FromTree("x", true)
	mapAtom := node.FromTree(map[string]any{"a": 1}, false)

	lvl := New([]*node.Node{mapAtom, scalarAtom})
	converted := lvl.Convert(node.MapTag)

	if len(converted.Atoms) != 1 {
		t.Fatalf("expected read-only scalar atom to be omitted, got %d atoms", len(converted.Atoms))
	}
}

func TestIterateMapVisitsEveryMapAtom(t *testing.T) {
	a := node.FromTree(map[string]any{"x": 1}, true)
	b := node.FromTree(map[string]any{"y": 2}, true)
	lvl := New([]*node.Node{a, b})

	seen := map[string]bool{}
	lvl.IterateMap(func(key string, child *node.Node) { seen[key] = true })

	if !seen["x"] || !seen["y"] {
		t.Fatalf("expected to see both x and y, got %v", seen)
	}
}
