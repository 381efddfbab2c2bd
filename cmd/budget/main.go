package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"budget/internal/app"
	"budget/internal/cli"
	"budget/internal/log"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, cli.StdIO())

	logLevel := flag.String("log-level", os.Getenv("LOG_LEVEL"), "log level: debug, info, warn or error")
	flag.Parse()

	// The CLI keeps stdout for command output.
	logger := cli.SetupLogger(*logLevel, os.Stderr).WithComponent(log.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	open := func(ctx context.Context) (*app.App, error) {
		cfg := cli.LoadAndValidateConfig(logger)
		return app.Open(ctx, cfg, app.Deps{Logger: logger})
	}
	status := cli.Execute(ctx, commander, flag.Args(), open, logger)
	stop()
	os.Exit(int(status))
}
