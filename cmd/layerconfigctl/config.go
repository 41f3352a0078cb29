package main

import (
	"github.com/houmingc/qutim/confdir"
	"github.com/houmingc/qutim"
	"github.com/houmingc/qutim/loopevent"
	"github.com/houmingc/qutim/saver"
	"github.com/houmingc/qutim/secretcodec"
	"github.com/houmingc/qutim/source"

	"github.com/scott-cotton/cli"
)

// MainConfig holds the flags every subcommand shares: which app's
// config directories to resolve against, and the passphrase for
// Crypted values.
type MainConfig struct {
	App        string `cli:"name=app desc='application name used to resolve the config directory (default layerconfig)'"`
	UserDir    string `cli:"name=user-dir desc='override the resolved user config directory'"`
	SystemDir  string `cli:"name=system-dir desc='override the resolved system config directory'"`
	Passphrase string `cli:"name=passphrase desc='passphrase for -secret values'"`
	Color      bool   `cli:"name=color desc='force colorized output even when stdout is not a tty'"`

	Main *cli.Command
}

func (cfg *MainConfig) resolver() *confdir.Resolver {
	app := cfg.App
	if app == "" {
		app = "layerconfig"
	}
	r := confdir.New(app)
	if cfg.UserDir != "" {
		r = r.WithUserDir(cfg.UserDir)
	}
	if cfg.SystemDir != "" {
		r = r.WithSystemDir(cfg.SystemDir)
	}
	return r
}

func (cfg *MainConfig) crypto() *secretcodec.Codec {
	return secretcodec.New(cfg.Passphrase)
}

// open opens files as a single layered Cursor, returning the Loop the
// caller must Drain after any mutation + Sync.
func (cfg *MainConfig) open(files []string, create bool) (*layerconfig.Cursor, *loopevent.Loop, error) {
	loop := loopevent.NewLoop()
	opts := layerconfig.OpenOptions{
		Resolver: cfg.resolver(),
		Cache:    source.NewCache(loop),
		Create:   create,
		Crypto:   cfg.crypto(),
		Saver:    saver.New(loop),
	}
	c, err := layerconfig.Open(files, opts)
	if err != nil {
		return nil, nil, err
	}
	return c, loop, nil
}
