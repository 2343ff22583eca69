package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the thresher command tree.
func NewRootCommand(version, buildTime, gitCommit string) *cobra.Command {
	var (
		verbose bool
		noColor bool
	)

	root := &cobra.Command{
		Use:   "thresher",
		Short: "Secret sharing over monotone access structures",
		Long: `Thresher shares secrets over arbitrary monotone access policies.

A policy is a boolean formula over party names, like
"(cfo & auditor) | (ceo & cfo)"; the secret is recoverable by exactly
the coalitions that satisfy it. Plain t-of-n splitting, threshold BLS
signing and polynomial commitments are included.`,
		Version: fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, gitCommit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			if noColor {
				color.NoColor = true
			}
		},
	}

	root.AddCommand(
		NewSplitCommand(),
		NewCombineCommand(),
		NewMSPCommand(),
		NewSplitBytesCommand(),
		NewCombineBytesCommand(),
		NewKeygenCommand(),
		NewSignCommand(),
		NewVerifyCommand(),
		NewThresholdCommand(),
		NewKZGCommand(),
		NewStoreCommand(),
	)

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return root
}
