// Package cli provides the lunarctl command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// tableKey stores the loaded reference table in the command context.
type tableKey struct{}

type rootOptions struct {
	tablePath string
	format    string
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "lunarctl",
		Short: "Korean lunar calendar converter",
		Long: `lunarctl converts dates between the Korean lunisolar calendar and the
Gregorian calendar using a precomputed reference table.

By default the table compiled into the binary is used; pass --table to load
a YAML table file instead.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
				return nil
			}

			switch opts.format {
			case FormatText, FormatJSON:
			default:
				return fmt.Errorf("--format must be text or json, got %q", opts.format)
			}

			table, err := loadTable(opts.tablePath)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), tableKey{}, table))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.tablePath, "table", "", "YAML reference table (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", FormatText, "Output format: text or json")

	rootCmd.AddCommand(
		newToLunarCommand(opts),
		newToSolarCommand(opts),
		newYearCommand(opts),
		newRangeCommand(opts),
		newVerifyCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func loadTable(path string) (*lunar.Table, error) {
	if path == "" {
		return lunar.Embedded()
	}
	t, err := lunar.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return t, nil
}

// tableFrom returns the table loaded by PersistentPreRunE.
func tableFrom(cmd *cobra.Command) *lunar.Table {
	if t, ok := cmd.Context().Value(tableKey{}).(*lunar.Table); ok {
		return t
	}
	return lunar.Default()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lunarctl v%s (%s)\n", Version, GitCommit)
		},
	}
}
