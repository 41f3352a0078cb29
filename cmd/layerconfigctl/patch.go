package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/houmingc/qutim"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/scott-cotton/cli"
)

type PatchConfig struct {
	MainConfig *MainConfig
	Patch      *cli.Command
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("patch").
		WithAliases("p").
		WithSynopsis("patch <file> <patchfile>").
		WithDescription("apply an RFC 6902 JSON patch document to a layered config file's top (first) layer").
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires a file and a patch file", cli.ErrUsage)
	}
	file, patchFile := args[0], args[1]

	patchData, err := os.ReadFile(patchFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", patchFile, err)
	}
	ops, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return fmt.Errorf("decoding patch %s: %w", patchFile, err)
	}

	c, loop, err := cfg.MainConfig.open([]string{file}, false)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}

	before, _ := c.RootValue(map[string]any{}, layerconfig.Normal).(map[string]any)
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file, err)
	}
	afterJSON, err := ops.Apply(beforeJSON)
	if err != nil {
		return fmt.Errorf("applying patch: %w", err)
	}
	var after map[string]any
	if err := json.Unmarshal(afterJSON, &after); err != nil {
		return fmt.Errorf("decoding patched result: %w", err)
	}

	for k := range before {
		if _, ok := after[k]; !ok {
			c.Remove(k)
		}
	}
	for k, v := range after {
		c.SetValue(k, v, layerconfig.Normal)
	}

	c.Sync()
	loop.Drain()
	return nil
}
