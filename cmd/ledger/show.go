package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/table"
)

type showCmd struct {
	currency string
	style    string
	width    int
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print the mirrored transactions and balance" }
func (*showCmd) Usage() string {
	return `ledger show [-currency <code>] [-style dark|light|notty] [-width <cols>]

  Renders the mirror's transactions as a table in the terminal, followed by
  the net balance.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Display currency. Defaults to DEFAULT_CURRENCY.")
	f.StringVar(&c.style, "style", "notty", "Terminal style.")
	f.IntVar(&c.width, "width", 100, "Word wrap width.")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	currency := cfg.DefaultCurrency
	if c.currency != "" {
		currency = c.currency
	}
	code, err := core.NormalizeCurrency(currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	res, err := backend.NewMirror(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	txs, err := services.NewSyncService(res.Mirror, cfg.MirrorTimeout, logger).FetchAll(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	balance := core.NewBalance(txs, code)
	out, err := table.RenderTerminal(table.Render(txs, code), balance.Formatted, c.style, c.width)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
