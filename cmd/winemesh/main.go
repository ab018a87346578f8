// Command winemesh serves the wine assistant API and offers a few local
// helpers for talking to the agents from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/winemesh/internal/app"
	"github.com/hupe1980/winemesh/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var envFile string

	root := &cobra.Command{
		Use:           "winemesh",
		Short:         "Multi-agent wine assistant",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	flags.String("provider", "", "llm provider (groq, openai, anthropic, google, mock)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, text, console)")
	flags.String("log-file", "", "write logs to a rotated file")
	bind(v, flags.Lookup("provider"), config.KeyProvider)
	bind(v, flags.Lookup("log-level"), config.KeyLogLevel)
	bind(v, flags.Lookup("log-format"), config.KeyLogFormat)
	bind(v, flags.Lookup("log-file"), config.KeyLogFile)

	load := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := config.Load(v, envFile)
		if err != nil {
			return nil, err
		}
		return app.New(cmd.Context(), cfg)
	}

	root.AddCommand(
		newServeCmd(v, load),
		newAskCmd(load),
		newSummaryCmd(load),
		newSQLGenCmd(load),
		newTokenCmd(v, &envFile),
	)
	return root
}
