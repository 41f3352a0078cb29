package main

import (
	"encoding/json"
	"fmt"

	"github.com/houmingc/qutim"

	"github.com/expr-lang/expr"
	"github.com/scott-cotton/cli"
)

type QueryConfig struct {
	MainConfig *MainConfig
	Query      *cli.Command
}

func QueryCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &QueryConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("query").
		WithAliases("q").
		WithSynopsis("query <expr> <file...>").
		WithDescription("evaluate an expr-lang expression against the merged view, with get(path) available").
		WithRun(func(cc *cli.Context, args []string) error {
			return query(cfg, cc, args)
		})
	cfg.Query = cmd
	return cmd
}

func queryOpts(c *layerconfig.Cursor) []expr.Option {
	return []expr.Option{
		expr.Function("get", func(params ...any) (any, error) {
			path := params[0].(string)
			return c.Value(path, nil, layerconfig.Normal), nil
		},
			new(func(string) any)),
		expr.Function("getSecret", func(params ...any) (any, error) {
			path := params[0].(string)
			return c.Value(path, nil, layerconfig.Crypted), nil
		},
			new(func(string) any)),
	}
}

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		cfg.Query.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: query requires an expression and at least one file", cli.ErrUsage)
	}
	code := args[0]
	files := args[1:]

	c, loop, err := cfg.MainConfig.open(files, false)
	if err != nil {
		return fmt.Errorf("opening %v: %w", files, err)
	}
	defer loop.Drain()

	program, err := expr.Compile(code, queryOpts(c)...)
	if err != nil {
		return fmt.Errorf("compiling expression: %w", err)
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return fmt.Errorf("evaluating expression: %w", err)
	}

	data, err := json.Marshal(out)
	if err != nil {
		fmt.Fprintln(cc.Out, out)
		return nil
	}
	fmt.Fprintln(cc.Out, string(data))
	return nil
}
