package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"ledger/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&serveCmd{}, "")
	commander.Register(&exportCmd{}, "mirror")
	commander.Register(&showCmd{}, "mirror")
	commander.Register(&tokenCmd{}, "api")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
