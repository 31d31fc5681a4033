package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the sharing command tree. The --verbose flag
// lowers level to Debug before any subcommand runs.
func NewRootCommand(version string, level *slog.LevelVar) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sharing",
		Short: "Threshold and xor secret sharing",
		Long: `Sharing splits a secret into shares and recombines them.

Schemes:
- threshold: Shamir sharing over the prime field 2^2048+981 (default)
- xor: n-of-n sharing with XOR or addition modulo 256
- gf256: Shamir sharing byte-wise over GF(2^8)

Shares can be printed or written to per-participant files, optionally
encrypted with a passphrase.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
		},
	}

	rootCmd.AddCommand(
		NewSplitCommand(),
		NewCombineCommand(),
		NewDemoCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")

	return rootCmd
}
