package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// globalFlags holds the state every subcommand needs, resolved once
// in the root command's PersistentPreRunE.
type globalFlags struct {
	logLevel     string
	logFormat    string
	allowUnbound bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "yamlfuse",
		Short:         "Parse, inspect, and repack composed YAML documents",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			handler, err := createHandler(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info",
		fmt.Sprintf("log level, one of: %s", strings.Join(levelStrings(), ", ")))
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text",
		fmt.Sprintf("log format, one of: %s", strings.Join(formatStrings(), ", ")))
	root.PersistentFlags().BoolVar(&g.allowUnbound, "allow-unbound", false,
		"treat an unresolved top-level $name variable as a no-op instead of an error")

	root.AddCommand(
		newParseCmd(g),
		newPackCmd(g),
		newCatCmd(g),
		newInspectCmd(g),
	)
	return root
}

// createHandler resolves level/format strings to a slog.Handler,
// mirroring the pack's own CreateHandlerWithStrings idiom rather than
// building a bespoke logging façade.
func createHandler(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q, want one of: %s", format, strings.Join(formatStrings(), ", "))
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q, want one of: %s", s, strings.Join(levelStrings(), ", "))
	}
}

func levelStrings() []string  { return slices.Clone([]string{"debug", "info", "warn", "error"}) }
func formatStrings() []string { return slices.Clone([]string{"text", "json"}) }
