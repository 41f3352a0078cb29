// Package source implements one backing configuration document: its
// path, the Backend that (de)serializes it, its loaded root Node, and
// the dirty/queued bits the Saver and Cursor coordinate through.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/houmingc/qutim/backend"
	"github.com/houmingc/qutim/internal/confdebug"
	"github.com/houmingc/qutim/node"
)

// ErrNoSuchSource is returned by Open when the requested source
// cannot be produced: the file or its directory is missing and create
// was false, the file's content does not load as a Map and create was
// false, or an absolute path was requested under systemDir (absolute
// system paths only ever open through the user-config code path). An
// error from the backend's Load is returned wrapped, not as
// ErrNoSuchSource.
var ErrNoSuchSource = errors.New("source: no such source")

// Resolver maps a relative configuration name to an absolute
// directory. The core only ever consumes this interface — concrete
// path policy (XDG, registry, whatever) lives outside this package;
// see the confdir package for a default implementation.
type Resolver interface {
	ConfigDir() string
	SystemConfigDir() string
}

// Source owns the root Node loaded from one backing file.
type Source struct {
	FileName string
	Backend  backend.Backend

	data *node.Node

	dirty        bool
	queued       bool
	lastModified time.Time

	refs int
}

// Data returns the source's root Node.
func (s *Source) Data() *node.Node { return s.data }

func (s *Source) String() string { return s.FileName }

// Open resolves path against resolver (under the user or system
// directory, per systemDir), loads it through backend (or, if
// backend is nil, by extension-matching against the registry), and
// returns the resulting Source — reusing a live cache entry when the
// file hasn't changed since it was loaded.
func Open(path string, systemDir bool, create bool, b backend.Backend, resolver Resolver, cache *Cache) (*Source, error) {
	if path == "" {
		path = "profile"
	}

	if !filepath.IsAbs(path) {
		dir := resolver.ConfigDir()
		if systemDir {
			dir = resolver.SystemConfigDir()
		}
		path = filepath.Join(dir, path)
	} else if systemDir {
		return nil, ErrNoSuchSource
	}
	path = filepath.Clean(path)

	if existing := cache.lookup(path); existing != nil && existing.IsValid() {
		return existing, nil
	}

	if b == nil {
		ext := extensionOf(path)
		if ext != "" {
			b = backend.Lookup(ext)
		}
		if b == nil {
			var err error
			b, err = backend.Default()
			if err != nil {
				return nil, err
			}
			path = path + "." + b.Name()
			if existing := cache.lookup(path); existing != nil && existing.IsValid() {
				return existing, nil
			}
		}
	}

	info, statErr := os.Stat(path)
	exists := statErr == nil
	if !exists && !create {
		return nil, ErrNoSuchSource
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		if !create {
			return nil, ErrNoSuchSource
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("source: creating %s: %w", dir, err)
		}
	}

	readOnly := systemDir || (exists && !isWritable(info))

	s := &Source{FileName: path, Backend: b}
	s.refreshModTime()

	tree, err := b.Load(path)
	if err != nil {
		return nil, fmt.Errorf("source: loading %s: %w", path, err)
	}
	s.data = node.FromTree(tree, readOnly)

	if s.data.IsScalar() || s.data.IsNull() {
		if !create {
			return nil, ErrNoSuchSource
		}
		s.data = node.FromTree(map[string]any{}, readOnly)
	}

	cache.insert(path, s)
	confdebug.Logf("source: opened %s (readOnly=%v): %s", path, readOnly, s.data)
	return s, nil
}

func extensionOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

func isWritable(info os.FileInfo) bool {
	return info.Mode().Perm()&0o200 != 0
}

func (s *Source) refreshModTime() {
	info, err := os.Stat(s.FileName)
	if err != nil {
		s.lastModified = time.Time{}
		return
	}
	s.lastModified = info.ModTime()
}

// IsValid reports whether the file's current modification time still
// matches the stamp recorded at load.
func (s *Source) IsValid() bool {
	info, err := os.Stat(s.FileName)
	if err != nil {
		return s.lastModified.IsZero()
	}
	return info.ModTime().Equal(s.lastModified)
}

func (s *Source) MakeDirty()     { s.dirty = true }
func (s *Source) IsDirty() bool  { return s.dirty }
func (s *Source) MarkQueued()    { s.queued = true }
func (s *Source) ClearQueued()   { s.queued = false }
func (s *Source) IsQueued() bool { return s.queued }

// Sync serializes the root Node through the backend, then clears
// dirty and refreshes the recorded modification time.
func (s *Source) Sync() error {
	if err := s.Backend.Save(s.FileName, s.data.ToTree()); err != nil {
		return fmt.Errorf("source: saving %s: %w", s.FileName, err)
	}
	s.dirty = false
	s.refreshModTime()
	confdebug.Logf("source: synced %s", s.FileName)
	return nil
}

// Retain increments this Source's reference count. The Cache is the
// only caller in this module; a Cursor holding the Source does not
// retain it.
func (s *Source) Retain() { s.refs++ }

// Release decrements the reference count; when it reaches zero the
// Source flushes synchronously if dirty.
func (s *Source) Release() {
	s.refs--
	if s.refs > 0 {
		return
	}
	if s.dirty {
		if err := s.Sync(); err != nil {
			confdebug.Logf("source: last-chance flush of %s failed: %v", s.FileName, err)
		}
	}
}
