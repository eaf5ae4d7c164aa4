// zcswap prices zero-coupon swaps and projects equity index fixings from JSON input.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/zcswap/cmd/zcswap/internal/forecast"
	"github.com/meenmo/zcswap/cmd/zcswap/internal/jsonio"
	"github.com/meenmo/zcswap/cmd/zcswap/internal/price"
	"github.com/meenmo/zcswap/config"
	"github.com/meenmo/zcswap/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "zcswap",
		Short:         "Zero-coupon swap and index fixing valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if lvl, _ := cmd.Flags().GetString("log-level"); strings.TrimSpace(lvl) != "" {
				loaded.LogLevel = lvl
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(loaded.LogLevel, loaded.LogFormat, stderr)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			config.SetConfig(*loaded)
			cfg = *loaded
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("config", "", "TOML config file path (optional)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Price zero-coupon swaps",
		Long: `Read one trade (JSON object) or a batch (JSON array) from stdin or --input,
price each trade and write the results as JSON to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("input")
			if path == "" && jsonio.IsTerminal(stdin) {
				return cmd.Help()
			}
			return price.Run(cmd.Context(), cfg, stdin, path, stdout)
		},
	}
	priceCmd.Flags().String("input", "", "JSON input path (optional; if set, ignores stdin)")

	forecastCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast equity index fixings",
		Long: `Read an equity forecast request from stdin or --input and write the resolved
fixings (stored or forecast) as JSON to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("input")
			if path == "" && jsonio.IsTerminal(stdin) {
				return cmd.Help()
			}
			return forecast.Run(cfg, stdin, path, stdout)
		},
	}
	forecastCmd.Flags().String("input", "", "JSON input path (optional; if set, ignores stdin)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "zcswap %s\n", version)
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
			fmt.Fprintf(stdout, "  built:   %s\n", date)
		},
	}

	root.AddCommand(priceCmd, forecastCmd, versionCmd)
	return root
}
