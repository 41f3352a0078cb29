package main

import (
	"fmt"

	"github.com/houmingc/qutim"

	"github.com/scott-cotton/cli"
)

type SetConfig struct {
	MainConfig *MainConfig
	Secret     bool `cli:"name=secret desc='encrypt the value before storing it, and mark it Crypted on read'"`
	Set        *cli.Command
}

func SetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("set").
		WithAliases("s").
		WithSynopsis("set [-secret] <path> <value> <file>").
		WithDescription("write a value into a config file and flush it to disk").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return set(cfg, cc, args)
		})
	cfg.Set = cmd
	return cmd
}

func set(cfg *SetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Set.Parse(cc, args)
	if err != nil {
		cfg.Set.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 3 {
		return fmt.Errorf("%w: set requires a path, a value and a file", cli.ErrUsage)
	}
	path, value, file := args[0], args[1], args[2]

	c, loop, err := cfg.MainConfig.open([]string{file}, true)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}

	flags := layerconfig.Normal
	if cfg.Secret {
		flags = layerconfig.Crypted
	}
	c.SetValue(path, value, flags)
	c.Sync()
	loop.Drain()
	return nil
}
