package confdir

import (
	"path/filepath"
	"testing"
)

func TestConfigDirPrefersXDGEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg-home")
	r := New("qutim")
	if got, want := r.ConfigDir(), filepath.Join("/xdg-home", "qutim"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConfigDirOverride(t *testing.T) {
	r := New("qutim").WithUserDir("/tmp/custom")
	if got, want := r.ConfigDir(), "/tmp/custom"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSystemConfigDirDefault(t *testing.T) {
	r := New("qutim")
	if got, want := r.SystemConfigDir(), filepath.Join("/etc/xdg", "qutim"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
