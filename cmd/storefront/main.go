// Command storefront is a terminal storefront session: browse the catalog, watch the
// impact counters, manage the persisted cart and check out.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ecofloss-backend/config"
	"ecofloss-backend/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: storefront [--env-file F] <command> [args]\n\nCommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "env files to load (default .env.local, .env)")
	pflag.CommandLine.SetInterspersed(false)
	pflag.Usage = usage
	pflag.Parse()

	if pflag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[pflag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", pflag.Arg(0))
		usage()
		os.Exit(2)
	}

	if err := config.LoadEnv(*envFiles...); err != nil {
		log.Fatal("Error loading env file: ", err)
	}
	cfg := config.Load()

	// Keep the terminal for command output
	logLevel := cfg.LogLevel
	if logLevel == config.DefaultLogLevel {
		logLevel = "warn"
	}
	logger, err := utils.NewLogger(logLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()
	config.ValidateStorefrontEnv(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Fatal("Failed to start session", zap.Error(err))
	}
	defer a.Close()

	if err := cmd.run(ctx, a, pflag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage: storefront %s\n", cmd.usage)
		} else if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSpace(err.Error()))
		}
		a.Close()
		logger.Sync()
		os.Exit(1)
	}
}
