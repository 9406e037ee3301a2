package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"ledger/internal/auth"
	"ledger/internal/config"
)

type tokenCmd struct {
	subject string
	ttl     time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a bearer token for the persistence API" }
func (*tokenCmd) Usage() string {
	return `ledger token [-sub <subject>] [-ttl <duration>]

  Signs a token with JWT_SECRET. Use it as MIRROR_TOKEN so the UI can
  reach ledger-api.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "sub", "ledger-ui", "Token subject.")
	f.DurationVar(&c.ttl, "ttl", 0, "Token lifetime. Defaults to JWT_TTL.")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	ttl := cfg.JWTTTL
	if c.ttl > 0 {
		ttl = c.ttl
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	token, err := tokens.Issue(c.subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
