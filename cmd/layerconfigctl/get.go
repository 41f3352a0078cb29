package main

import (
	"encoding/json"
	"fmt"

	"github.com/houmingc/qutim"

	"github.com/scott-cotton/cli"
)

type GetConfig struct {
	MainConfig *MainConfig
	Secret     bool `cli:"name=secret desc='the value at path is Crypted'"`
	Get        *cli.Command
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("get").
		WithAliases("g").
		WithSynopsis("get [-secret] <path> <file...>").
		WithDescription("resolve a slash-separated path against one or more layered config files and print the value").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: get requires a path and at least one file", cli.ErrUsage)
	}
	path := args[0]
	files := args[1:]

	c, loop, err := cfg.MainConfig.open(files, false)
	if err != nil {
		return fmt.Errorf("opening %v: %w", files, err)
	}
	defer loop.Drain()

	flags := layerconfig.Normal
	if cfg.Secret {
		flags = layerconfig.Crypted
	}
	v := c.Value(path, nil, flags)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cc.Out, string(data))
	return nil
}
