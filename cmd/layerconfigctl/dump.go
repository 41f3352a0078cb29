package main

import (
	"fmt"

	"github.com/houmingc/qutim"

	"github.com/scott-cotton/cli"
)

type DumpConfig struct {
	MainConfig *MainConfig
	Dump       *cli.Command
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("dump").
		WithSynopsis("dump <file...>").
		WithDescription("pretty-print the top (first) layer of one or more layered config files; lower layers are not merged in").
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
	cfg.Dump = cmd
	return cmd
}

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		cfg.Dump.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: dump requires at least one file", cli.ErrUsage)
	}

	c, loop, err := cfg.MainConfig.open(args, false)
	if err != nil {
		return fmt.Errorf("opening %v: %w", args, err)
	}
	defer loop.Drain()

	root := c.RootValue(map[string]any{}, layerconfig.Normal)
	colors := newValueColors(colorsFor(cc.Out, cfg.MainConfig.Color))
	dumpValue(cc.Out, root, 0, colors)
	return nil
}
