// Package layerconfig implements the Cursor abstraction over a stack
// of layered configuration sources: group/array navigation, value
// read/write with layered precedence, and the deferred-save protocol
// described across this module's sub-packages.
//
// The other packages (node, level, source, backend, saver, loopevent)
// each own one piece of the model; this file is where they come
// together into the single handle applications actually hold.
package layerconfig

import (
	"fmt"
	"strings"

	"github.com/houmingc/qutim/backend"
	"github.com/houmingc/qutim/internal/confdebug"
	"github.com/houmingc/qutim/level"
	"github.com/houmingc/qutim/node"
	"github.com/houmingc/qutim/saver"
	"github.com/houmingc/qutim/secretcodec"
	"github.com/houmingc/qutim/source"
)

// Flag is a value-read/write option, ORable.
type Flag int

const (
	// Normal reads/writes a value as-is.
	Normal Flag = 0
	// Crypted passes the value through the Cursor's Crypto on both
	// read and write.
	Crypted Flag = 1 << 0
)

// OpenOptions configures Open and FromValue. Cache is always required
// by Open, and Resolver is required by Open when paths are relative;
// Backend, Fallbacks, Crypto and Saver are all optional.
type OpenOptions struct {
	Resolver source.Resolver
	Cache    *source.Cache
	Backend  backend.Backend

	// Create, when true, creates missing user-directory sources
	// (system-directory sources are never created).
	Create bool

	// Fallbacks are appended as further read-only atoms after every
	// file Source, in order. A fallback that materializes to a
	// Scalar or Null is discarded (spec'd "a fallback whose root is
	// Scalar or Null is discarded").
	Fallbacks []any

	Crypto *secretcodec.Codec
	Saver  *saver.Saver
}

// Cursor is the user-facing handle: a stack of Levels, the ordered
// Sources backing the root Level, and a memory-guard link to the
// parent Cursor it was derived from (if any).
type Cursor struct {
	levels  []*level.Level
	sources []*source.Source

	parent *Cursor

	crypto *secretcodec.Codec
	saver  *saver.Saver
}

// Open opens the given paths — each resolved against the user config
// directory first, then the system config directory, duplicates
// skipped by canonical path — and returns a Cursor whose root Level
// layers the resulting Sources (user overrides system) followed by
// any Fallbacks.
func Open(paths []string, opts OpenOptions) (*Cursor, error) {
	seen := make(map[string]bool)
	var srcs []*source.Source

	for _, p := range paths {
		s, err := source.Open(p, false, opts.Create, opts.Backend, opts.Resolver, opts.Cache)
		if err != nil {
			continue
		}
		if seen[s.FileName] {
			continue
		}
		seen[s.FileName] = true
		srcs = append(srcs, s)
	}
	for _, p := range paths {
		s, err := source.Open(p, true, false, opts.Backend, opts.Resolver, opts.Cache)
		if err != nil {
			continue
		}
		if seen[s.FileName] {
			continue
		}
		seen[s.FileName] = true
		srcs = append(srcs, s)
	}

	if len(srcs) == 0 && len(opts.Fallbacks) == 0 {
		return nil, source.ErrNoSuchSource
	}

	atoms := make([]*node.Node, 0, len(srcs)+len(opts.Fallbacks))
	for _, s := range srcs {
		atoms = append(atoms, s.Data())
	}
	for _, fb := range opts.Fallbacks {
		n := node.FromTree(fb, true)
		if n.IsScalar() || n.IsNull() {
			continue
		}
		atoms = append(atoms, n)
	}

	c := &Cursor{
		levels:  []*level.Level{level.New(atoms)},
		sources: srcs,
		crypto:  opts.Crypto,
		saver:   opts.Saver,
	}
	confdebug.Logf("layerconfig: opened cursor over %d source(s), %d fallback(s)", len(srcs), len(opts.Fallbacks))
	return c, nil
}

// FromValue builds an in-memory-only Cursor whose sole, writable
// atom is v. It never touches disk and has no Source to sync.
func FromValue(v any, opts OpenOptions) *Cursor {
	n := node.FromTree(v, false)
	return &Cursor{
		levels: []*level.Level{level.New([]*node.Node{n})},
		crypto: opts.Crypto,
		saver:  opts.Saver,
	}
}

func (c *Cursor) currentLevel() *level.Level {
	return c.levels[len(c.levels)-1]
}

func (c *Cursor) pushLevel(l *level.Level) {
	c.levels = append(c.levels, l)
}

func (c *Cursor) popLevel() *level.Level {
	n := len(c.levels)
	l := c.levels[n-1]
	c.levels = c.levels[:n-1]
	return l
}

func (c *Cursor) clone() *Cursor {
	return &Cursor{
		levels:  append([]*level.Level{}, c.levels...),
		sources: c.sources,
		crypto:  c.crypto,
		saver:   c.saver,
		parent:  c,
	}
}

// parseNames splits a slash-separated path into its non-empty
// segments.
func parseNames(fullName string) []string {
	parts := strings.Split(fullName, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLastSlash splits key on its last "/" into a group prefix and a
// leaf key. A key with no "/" has an empty prefix.
func splitLastSlash(key string) (prefix, leaf string) {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

// BeginGroup pushes a Map-typed Level reached from the current frame
// by descending through name's slash-separated segments.
func (c *Cursor) BeginGroup(name string) {
	lvl := c.currentLevel().ChildPath(parseNames(name))
	lvl = lvl.Convert(node.MapTag)
	c.pushLevel(lvl)
}

// EndGroup pops the current frame. Popping the root frame is a
// programming error.
func (c *Cursor) EndGroup() {
	if len(c.levels) <= 1 {
		panic("layerconfig: EndGroup on root frame")
	}
	c.popLevel()
}

// Group behaves like BeginGroup but returns an independent Cursor
// holding the pushed frame, sharing this Cursor's atoms and guarded
// by a reference back to it; this Cursor's own frame stack is left
// unchanged.
func (c *Cursor) Group(name string) *Cursor {
	lvl := c.currentLevel().ChildPath(parseNames(name))
	lvl = lvl.Convert(node.MapTag)
	c.pushLevel(lvl)
	derived := c.clone()
	c.popLevel()
	return derived
}

// BeginArray pushes a List-typed Level reached from the current frame
// and returns its current length.
func (c *Cursor) BeginArray(name string) int {
	lvl := c.currentLevel().ChildPath(parseNames(name))
	lvl = lvl.Convert(node.ListTag)
	c.pushLevel(lvl)
	return arraySizeOfAtoms(lvl.Atoms)
}

// EndArray pops the array-element frame first, if one is active, then
// pops the list frame itself.
func (c *Cursor) EndArray() {
	if c.currentLevel().ArrayElement {
		c.popLevel()
	}
	if len(c.levels) <= 1 {
		panic("layerconfig: EndArray without a matching BeginArray")
	}
	c.popLevel()
}

// SetArrayIndex pops any active array-element frame, then pushes a
// fresh Map-typed array-element frame at index i of the current
// (List-typed) frame.
func (c *Cursor) SetArrayIndex(i int) {
	if c.currentLevel().ArrayElement {
		c.popLevel()
	}
	cur := c.currentLevel()
	if len(cur.Atoms) == 0 || !cur.Atoms[0].IsList() {
		panic("layerconfig: SetArrayIndex outside a BeginArray frame")
	}
	lvl := cur.ChildAt(i)
	lvl = lvl.Convert(node.MapTag)
	lvl.ArrayElement = true
	c.pushLevel(lvl)
}

// ArrayElement returns an independent Cursor positioned at index i of
// the current array frame, guarded by a reference back to this
// Cursor.
func (c *Cursor) ArrayElement(i int) *Cursor {
	derived := c.clone()
	derived.SetArrayIndex(i)
	return derived
}

// ArraySize returns the length of the List frame that either is the
// current frame, or — if the current frame is an array element — is
// its parent frame.
func (c *Cursor) ArraySize() int {
	idx := len(c.levels) - 1
	if c.levels[idx].ArrayElement {
		idx--
	}
	return arraySizeOfAtoms(c.levels[idx].Atoms)
}

func arraySizeOfAtoms(atoms []*node.Node) int {
	for _, a := range atoms {
		if a.IsList() && a.ArraySize() > 0 {
			return a.ArraySize()
		}
	}
	return 0
}

// Value reads key from the current frame, walking atoms in layered
// precedence order: the first atom whose Map contains key with a
// non-Null child wins. A key containing "/" is resolved by
// temporarily descending into the group named by its prefix.
func (c *Cursor) Value(key string, def any, flags Flag) any {
	prefix, leaf := splitLastSlash(key)
	if prefix != "" {
		c.BeginGroup(prefix)
		defer c.EndGroup()
	}
	return c.valueLeaf(leaf, def, flags)
}

func (c *Cursor) valueLeaf(leaf string, def any, flags Flag) any {
	for _, atom := range c.currentLevel().Atoms {
		if !atom.IsMap() {
			continue
		}
		child := atom.PeekChild(leaf)
		if child == nil || child.IsNull() {
			continue
		}
		return c.decodeValue(child.Clone().ToTree(), flags)
	}
	return def
}

// RootValue returns the current frame's first atom materialized as a
// tree value, or def if the frame has no atoms.
func (c *Cursor) RootValue(def any, flags Flag) any {
	atoms := c.currentLevel().Atoms
	if len(atoms) == 0 {
		return def
	}
	return c.decodeValue(atoms[0].Clone().ToTree(), flags)
}

func (c *Cursor) decodeValue(v any, flags Flag) any {
	if flags&Crypted == 0 {
		return v
	}
	s, ok := v.(string)
	if !ok || c.crypto == nil {
		return v
	}
	dec, err := c.crypto.Decrypt(s)
	if err != nil {
		confdebug.Logf("layerconfig: decrypt failed, returning raw value: %v", err)
		return v
	}
	return dec
}

// SetValue writes key in the current frame's first (writable) atom,
// marking the owning Source dirty iff the stored value actually
// changed. A key containing "/" is resolved the same way Value does.
func (c *Cursor) SetValue(key string, v any, flags Flag) {
	prefix, leaf := splitLastSlash(key)
	if prefix != "" {
		c.BeginGroup(prefix)
		defer c.EndGroup()
	}
	c.setValueLeaf(leaf, v, flags)
}

func (c *Cursor) setValueLeaf(leaf string, v any, flags Flag) {
	atoms := c.currentLevel().Atoms
	if len(atoms) == 0 {
		panic("layerconfig: SetValue with no atom in frame")
	}
	atom := atoms[0]
	if atom.IsReadOnly() {
		panic("layerconfig: SetValue on a read-only cursor")
	}
	if !atom.IsMap() {
		atom.Convert(node.MapTag)
	}

	encoded := v
	if flags&Crypted != 0 && c.crypto != nil {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		enc, err := c.crypto.Encrypt(s)
		if err != nil {
			panic(fmt.Sprintf("layerconfig: encrypting value: %v", err))
		}
		encoded = enc
	}

	newChild := node.FromTree(encoded, false)
	if atom.ReplaceChild(leaf, newChild) {
		c.markFirstSourceDirty()
	}
}

// Remove deletes key from the current frame's first atom.
func (c *Cursor) Remove(key string) bool {
	atoms := c.currentLevel().Atoms
	if len(atoms) == 0 {
		return false
	}
	ok := atoms[0].Remove(key)
	if ok {
		c.markFirstSourceDirty()
	}
	return ok
}

// RemoveAt deletes the element at index from the current (List-typed)
// frame's first atom, first popping an active array-element frame.
func (c *Cursor) RemoveAt(index int) bool {
	if c.currentLevel().ArrayElement {
		c.popLevel()
	}
	atoms := c.currentLevel().Atoms
	if len(atoms) == 0 {
		return false
	}
	ok := atoms[0].RemoveAt(index)
	if ok {
		c.markFirstSourceDirty()
	}
	return ok
}

func (c *Cursor) markFirstSourceDirty() {
	if len(c.sources) == 0 {
		return
	}
	c.sources[0].MakeDirty()
}

// ChildGroups returns the current frame's keys whose first-seen value
// (across layered atoms) is a Map.
func (c *Cursor) ChildGroups() []string {
	seen := make(map[string]bool)
	var out []string
	c.currentLevel().IterateMap(func(key string, child *node.Node) {
		if seen[key] {
			return
		}
		seen[key] = true
		if child.IsMap() {
			out = append(out, key)
		}
	})
	return out
}

// ChildKeys returns the current frame's keys whose first-seen value
// is not a Map.
func (c *Cursor) ChildKeys() []string {
	seen := make(map[string]bool)
	var out []string
	c.currentLevel().IterateMap(func(key string, child *node.Node) {
		if seen[key] {
			return
		}
		seen[key] = true
		if !child.IsMap() {
			out = append(out, key)
		}
	})
	return out
}

// HasChildGroup reports whether key's first occurrence across the
// current frame's atoms is a Map.
func (c *Cursor) HasChildGroup(key string) bool {
	for _, atom := range c.currentLevel().Atoms {
		if !atom.IsMap() {
			continue
		}
		if child := atom.PeekChild(key); child != nil {
			return child.IsMap()
		}
	}
	return false
}

// HasChildKey reports whether key's first occurrence across the
// current frame's atoms is not a Map.
func (c *Cursor) HasChildKey(key string) bool {
	for _, atom := range c.currentLevel().Atoms {
		if !atom.IsMap() {
			continue
		}
		if child := atom.PeekChild(key); child != nil {
			return !child.IsMap()
		}
	}
	return false
}

// Sync posts a save event for every dirty, not-already-queued Source
// this Cursor holds.
func (c *Cursor) Sync() {
	if c.saver == nil {
		return
	}
	for _, s := range c.sources {
		if s.IsDirty() && !s.IsQueued() {
			c.saver.RequestSave(s)
		}
	}
}

// Close implements this module's "drop" semantics: a Cursor with no
// memory-guard parent (the original Cursor returned from Open or
// FromValue) syncs; a Cursor derived via Group or ArrayElement does
// not, since the original Cursor it guards is the one responsible for
// syncing.
func (c *Cursor) Close() {
	if c.parent != nil {
		return
	}
	c.Sync()
}
