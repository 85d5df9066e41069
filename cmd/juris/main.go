// Package main is the juris command line client. It runs research sessions
// in process against the configured model provider.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "juris",
	Short: "Legal precedent research from the command line",
	Long: `juris searches public judicial archives for precedents on a legal topic,
split into cases the primary party won and cases it lost, and prints a
strategy briefing.

Configuration is read from a TOML file (--config or CONFIG_PATH) and the
environment. The API key is never printed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", os.Getenv("CONFIG_PATH"), "path to a TOML config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
