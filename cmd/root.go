// Package cmd implements the PageMark CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gaurav-prasanna/pagemark/core/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string

	// cfg is resolved before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pagemark",
	Short: "PageMark: extract, summarize and highlight clinical guidance pages",
	Long: `PageMark reads a web page, splits its main content into heading chunks,
asks a summary service for the passages that matter, and marks those passages
on the page.

Usage:
  pagemark extract <url> [flags]
  pagemark annotate <url> [flags]
  pagemark serve [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	config.RegisterFlags(pf)
}

func setup(cmd *cobra.Command, _ []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil || level == zerolog.NoLevel {
		return fmt.Errorf("invalid --log-level %q", flagLogLevel)
	}
	zerolog.SetGlobalLevel(level)

	// A .env file in the working directory may supply PAGEMARK_* values.
	_ = godotenv.Load()

	c, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c
	log.Debug().Str("summarizer", cfg.Summarizer).Str("api", cfg.API.Base).Msg("configuration loaded")
	return nil
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
