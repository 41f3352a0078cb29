package layerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/houmingc/qutim/backend/jsonbackend"
	"github.com/houmingc/qutim/confdir"
	"github.com/houmingc/qutim/loopevent"
	"github.com/houmingc/qutim/saver"
	"github.com/houmingc/qutim/secretcodec"
	"github.com/houmingc/qutim/source"
)

func newHarness(t *testing.T, userDir, systemDir string) (OpenOptions, *loopevent.Loop) {
	t.Helper()
	loop := loopevent.NewLoop()
	return OpenOptions{
		Resolver: confdir.New("test").WithUserDir(userDir).WithSystemDir(systemDir),
		Cache:    source.NewCache(loop),
		Backend:  jsonbackend.New(),
		Create:   true,
		Saver:    saver.New(loop),
	}, loop
}

// S1: create+write+read, through an explicit sync+drain+reopen cycle.
func TestScenarioCreateWriteRead(t *testing.T) {
	dir := t.TempDir()
	opts, loop := newHarness(t, dir, filepath.Join(dir, "sys"))

	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.SetValue("user/name", "alice", Normal)
	c.Sync()
	loop.Drain()

	opts2, _ := newHarness(t, dir, filepath.Join(dir, "sys"))
	c2, err := Open([]string{"t.json"}, opts2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := c2.Value("user/name", nil, Normal); got != "alice" {
		t.Fatalf("got %v, want alice", got)
	}
}

// S2: layering — user overrides system, system fills in what the user
// source lacks.
func TestScenarioLayering(t *testing.T) {
	userDir := t.TempDir()
	sysDir := t.TempDir()
	os.WriteFile(filepath.Join(userDir, "t.json"), []byte(`{"k":"user"}`), 0o644)
	os.WriteFile(filepath.Join(sysDir, "t.json"), []byte(`{"k":"sys","only":1}`), 0o644)

	opts, _ := newHarness(t, userDir, sysDir)
	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := c.Value("k", nil, Normal); got != "user" {
		t.Fatalf("got %v, want user", got)
	}
	if got := c.Value("only", nil, Normal); got != int64(1) {
		t.Fatalf("got %v, want 1", got)
	}
}

// S3: secret values round-trip through Crypto, and reading a Crypted
// value without the flag yields the raw ciphertext.
func TestScenarioSecret(t *testing.T) {
	dir := t.TempDir()
	opts, _ := newHarness(t, dir, filepath.Join(dir, "sys"))
	opts.Crypto = secretcodec.New("a passphrase")

	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.SetValue("p", "hi", Crypted)

	if got := c.Value("p", "", Crypted); got != "hi" {
		t.Fatalf("got %v, want hi", got)
	}
	raw := c.Value("p", "", Normal)
	if raw == "hi" {
		t.Fatalf("raw value should be ciphertext, not plaintext")
	}
}

// S4/S5: array construction, reopen, and element removal.
func TestScenarioArrayAndRemove(t *testing.T) {
	dir := t.TempDir()
	opts, loop := newHarness(t, dir, filepath.Join(dir, "sys"))

	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.BeginArray("xs")
	c.SetArrayIndex(0)
	c.SetValue("v", int64(10), Normal)
	c.SetArrayIndex(1)
	c.SetValue("v", int64(20), Normal)
	c.EndArray()
	c.Sync()
	loop.Drain()

	opts2, loop2 := newHarness(t, dir, filepath.Join(dir, "sys"))
	c2, err := Open([]string{"t.json"}, opts2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if n := c2.BeginArray("xs"); n != 2 {
		t.Fatalf("got arraySize %d, want 2", n)
	}
	if got := c2.ArrayElement(1).Value("v", nil, Normal); got != int64(20) {
		t.Fatalf("got %v, want 20", got)
	}
	if ok := c2.RemoveAt(0); !ok {
		t.Fatalf("RemoveAt(0) reported no such element")
	}
	c2.EndArray()
	c2.Sync()
	loop2.Drain()

	opts3, _ := newHarness(t, dir, filepath.Join(dir, "sys"))
	c3, err := Open([]string{"t.json"}, opts3)
	if err != nil {
		t.Fatalf("reopen after remove: %v", err)
	}
	if n := c3.BeginArray("xs"); n != 1 {
		t.Fatalf("got arraySize %d after remove, want 1", n)
	}
	if got := c3.ArrayElement(0).Value("v", nil, Normal); got != int64(20) {
		t.Fatalf("got %v, want 20", got)
	}
}

// S6: a group Cursor writes through to the parent's shared atom, and
// outlives being dropped — the parent may keep writing to the same
// group afterward.
func TestScenarioGroupCursorIndependence(t *testing.T) {
	c := FromValue(map[string]any{}, OpenOptions{})

	c2 := c.Group("a/b")
	c2.SetValue("k", int64(1), Normal)

	if got := c.Value("a/b/k", nil, Normal); got != int64(1) {
		t.Fatalf("got %v, want 1", got)
	}

	c2 = nil // drop c2; c must still be able to write into a/b
	_ = c2
	c.SetValue("a/b/k", int64(2), Normal)
	if got := c.Value("a/b/k", nil, Normal); got != int64(2) {
		t.Fatalf("got %v, want 2", got)
	}
}

// Property 2: a no-op write never flips the dirty bit.
func TestPropertyNoOpWriteDoesNotDirty(t *testing.T) {
	dir := t.TempDir()
	opts, _ := newHarness(t, dir, filepath.Join(dir, "sys"))
	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.SetValue("k", "v", Normal)
	if !c.sources[0].IsDirty() {
		t.Fatalf("expected first write to dirty the source")
	}
	if err := c.sources[0].Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	c.SetValue("k", "v", Normal)
	if c.sources[0].IsDirty() {
		t.Fatalf("writing the same value again should not dirty the source")
	}
}

// Property 1: a read-only Node's materialized tree never changes.
func TestPropertyReadOnlyPreservation(t *testing.T) {
	userDir := t.TempDir()
	sysDir := t.TempDir()
	os.WriteFile(filepath.Join(userDir, "t.json"), []byte(`{"k":"user"}`), 0o644)
	os.WriteFile(filepath.Join(sysDir, "t.json"), []byte(`{"k":"sys"}`), 0o644)

	opts, _ := newHarness(t, userDir, sysDir)
	c, err := Open([]string{"t.json"}, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	before := c.sources[1].Data().ToTree()
	c.SetValue("k", "changed", Normal)
	after := c.sources[1].Data().ToTree()

	bm, am := before.(map[string]any), after.(map[string]any)
	if bm["k"] != am["k"] {
		t.Fatalf("system (read-only) source was mutated: %v -> %v", bm["k"], am["k"])
	}
}
