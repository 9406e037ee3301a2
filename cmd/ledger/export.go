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
	"ledger/internal/csvexport"
	"ledger/internal/services"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "download every mirrored transaction as CSV" }
func (*exportCmd) Usage() string {
	return `ledger export [-o <file>|-]

  Fetches the full transaction list from the configured mirror and writes
  it as CSV. Nothing is written when the mirror cannot be reached.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", csvexport.FileName, "Output file, or - for stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
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

	data, err := services.NewSyncService(res.Mirror, cfg.MirrorTimeout, logger).Export(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), c.output)
	return subcommands.ExitSuccess
}
