// Package confdir implements the default path-resolution policy for
// "user config directory" and "system config directory". The core
// never imports this package directly — callers wire a
// confdir.Resolver (or their own Resolver) into source.Open.
package confdir

import (
	"os"
	"path/filepath"
)

// Resolver resolves relative configuration names under an app's user
// or system configuration directory.
type Resolver struct {
	app string

	userDir   string
	systemDir string
}

// New returns a Resolver for the given application name, e.g. "qutim".
func New(app string) *Resolver {
	return &Resolver{app: app}
}

// ConfigDir returns the writable, per-user configuration directory:
// $XDG_CONFIG_HOME/<app> if set, else os.UserConfigDir()/<app>, else
// ~/.config/<app>.
func (r *Resolver) ConfigDir() string {
	if r.userDir != "" {
		return r.userDir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, r.app)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, r.app)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", r.app)
	}
	return filepath.Join(".", r.app)
}

// SystemConfigDir returns the typically-read-only, machine-wide
// configuration directory: /etc/xdg/<app>.
func (r *Resolver) SystemConfigDir() string {
	if r.systemDir != "" {
		return r.systemDir
	}
	return filepath.Join("/etc/xdg", r.app)
}

// WithUserDir overrides the resolved user directory — used by tests
// that need a temp directory instead of the real one.
func (r *Resolver) WithUserDir(dir string) *Resolver {
	r.userDir = dir
	return r
}

// WithSystemDir overrides the resolved system directory.
func (r *Resolver) WithSystemDir(dir string) *Resolver {
	r.systemDir = dir
	return r
}
