package main

import (
	"encoding/json"
	"fmt"

	"github.com/houmingc/qutim"

	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type DiffConfig struct {
	MainConfig *MainConfig
	Diff       *cli.Command
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("diff").
		WithAliases("d").
		WithSynopsis("diff <file1> <file2>").
		WithDescription("diff the top-layer JSON views of two layered config files; lower layers are not merged in").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 files, got %v", cli.ErrUsage, args)
	}

	aJSON, err := mergedJSON(cfg.MainConfig, args[0])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}
	bJSON, err := mergedJSON(cfg.MainConfig, args[1])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[1], err)
	}

	dmp := diffpatch.New()
	diffs := dmp.DiffMain(aJSON, bJSON, true)
	fmt.Fprintln(cc.Out, dmp.DiffPrettyText(diffs))
	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			return cli.ExitCodeErr(1)
		}
	}
	return nil
}

func mergedJSON(mainCfg *MainConfig, file string) (string, error) {
	c, loop, err := mainCfg.open([]string{file}, false)
	if err != nil {
		return "", err
	}
	defer loop.Drain()
	root := c.RootValue(map[string]any{}, layerconfig.Normal)
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
