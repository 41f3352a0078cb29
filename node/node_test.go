package node

import "testing"

func TestChildInsertsNullOnWritableMap(t *testing.T) {
	n := New(false)
	c := n.Child("a")
	if !c.IsNull() {
		t.Fatalf("expected fresh child to be Null, got %s", c.Tag())
	}
	if !n.IsMap() {
		t.Fatalf("expected parent to become a Map, got %s", n.Tag())
	}
}

func TestChildOnReadOnlyMapMissingKeyIsAbsent(t *testing.T) {
	n := FromTree(map[string]any{"a": 1.0}, true)
	if c := n.Child("missing"); c != nil {
		t.Fatalf("expected nil for missing key on read-only map, got %v", c)
	}
	if c := n.Child("a"); c == nil || c.AsScalar() != 1.0 {
		t.Fatalf("expected present key to resolve")
	}
}

func TestChildAtGrowsWritableList(t *testing.T) {
	n := New(false)
	c := n.ChildAt(2)
	if n.ArraySize() != 3 {
		t.Fatalf("expected list to grow to 3 entries, got %d", n.ArraySize())
	}
	if !c.IsNull() {
		t.Fatalf("expected grown entries to be Null")
	}
}

func TestConvertReadOnlyMismatchPanics(t *testing.T) {
	n := New(true)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic converting a read-only Null to Map")
		}
	}()
	n.Convert(MapTag)
}

func TestReplaceChildNoOpOnEqualValue(t *testing.T) {
	n := New(false)
	n.Convert(MapTag)
	n.ReplaceChild("k", FromTree("v", false))
	if changed := n.ReplaceChild("k", FromTree("v", false)); changed {
		t.Fatalf("expected replacing with an equal value to report unchanged")
	}
	if changed := n.ReplaceChild("k", FromTree("w", false)); !changed {
		t.Fatalf("expected replacing with a different value to report changed")
	}
}

func TestRemoveOutOfRangeList(t *testing.T) {
	n := FromTree([]any{1.0, 2.0}, false)
	if n.RemoveAt(5) {
		t.Fatalf("expected out-of-range remove to report false")
	}
	if !n.RemoveAt(0) {
		t.Fatalf("expected in-range remove to succeed")
	}
	if n.ArraySize() != 1 {
		t.Fatalf("expected array size 1 after remove, got %d", n.ArraySize())
	}
}

func TestToTreeFromTreeRoundTrip(t *testing.T) {
	tree := map[string]any{
		"a": "hi",
		"b": []any{1.0, 2.0, "x"},
		"c": map[string]any{"d": true},
	}
	n := FromTree(tree, false)
	got := n.ToTree()
	if !treeEqual(tree, got) {
		t.Fatalf("round trip mismatch: %#v vs %#v", tree, got)
	}
}

func TestReadOnlyPropagatesToChildren(t *testing.T) {
	n := FromTree(map[string]any{"a": map[string]any{"b": 1.0}}, true)
	child := n.Child("a")
	if !child.IsReadOnly() {
		t.Fatalf("expected child of read-only map to be read-only")
	}
	grandchild := child.Child("b")
	if !grandchild.IsReadOnly() {
		t.Fatalf("expected grandchild of read-only map to be read-only")
	}
}
