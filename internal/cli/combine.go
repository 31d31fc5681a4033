package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"unicode"
	"unicode/utf8"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
	"github.com/Davincible/sharing/pkg/secure"
	"github.com/Davincible/sharing/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type CombineResult struct {
	Scheme    string `json:"scheme"`
	SetID     string `json:"set_id"`
	Shares    int    `json:"shares"`
	SecretHex string `json:"secret_hex"`
	Secret    string `json:"secret,omitempty"`
}

func NewCombineCommand() *cobra.Command {
	var (
		usePassphrase bool
		outputHex     bool
		outputDecimal bool
	)

	cmd := &cobra.Command{
		Use:   "combine FILE...",
		Short: "Combine share files to recover the secret",
		Long: `Combine share files written by 'sharing split --output-dir' to recover
the original secret. The scheme, threshold and share set are read from the
files; shares from different splits are rejected.

Threshold shares need at least t files, xor shares need all n files.`,
		Example: `  # Combine three share files
  sharing combine shares/share-1a2b3c4d-01.json shares/share-1a2b3c4d-03.json shares/share-1a2b3c4d-05.json

  # Encrypted shares, secret printed as hex
  sharing combine shares/*.json --passphrase --hex`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputHex && outputDecimal {
				return fmt.Errorf("--hex and --decimal are mutually exclusive")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if !usePassphrase {
				usePassphrase, err = anyEncrypted(args)
				if err != nil {
					return err
				}
			}

			var passphrase []byte
			if usePassphrase {
				passphrase, err = readPassphrase(cmd, false)
				if err != nil {
					return err
				}
				defer secure.ClearBytes(&passphrase)
			}

			shares, err := storage.ReadShares(args, passphrase)
			if err != nil {
				return err
			}
			slog.Debug("Loaded shares", "count", len(shares), "scheme", shares[0].Scheme)

			secret, err := secretsharing.NewDefaultRegistry(nil).Combine(shares)
			if err != nil {
				return fmt.Errorf("failed to combine shares: %w", err)
			}
			if cfg.Security.WipeMemory {
				defer secure.Zero(secret)
			}

			result := CombineResult{
				Scheme:    string(shares[0].Scheme),
				SetID:     shares[0].SetID,
				Shares:    len(shares),
				SecretHex: hex.EncodeToString(secret),
			}
			if isPrintable(secret) {
				result.Secret = string(secret)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput(cmd):
				return writeJSON(out, result)
			case outputHex:
				fmt.Fprintln(out, result.SecretHex)
			case outputDecimal:
				fmt.Fprintln(out, new(big.Int).SetBytes(secret).String())
			default:
				printCombineResult(out, result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&usePassphrase, "passphrase", "p", false, "Share files are encrypted with a passphrase")
	cmd.Flags().BoolVar(&outputHex, "hex", false, "Print only the secret as hex")
	cmd.Flags().BoolVar(&outputDecimal, "decimal", false, "Print only the secret as a decimal integer")

	return cmd
}

// anyEncrypted reports whether one of the share files needs a passphrase.
func anyEncrypted(paths []string) (bool, error) {
	for _, path := range paths {
		encrypted, err := storage.NewShareFile(path, 0).IsEncrypted()
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		if encrypted {
			return true, nil
		}
	}
	return false, nil
}

// isPrintable reports whether data is valid UTF-8 text without control
// characters other than common whitespace.
func isPrintable(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	for _, r := range string(data) {
		if !unicode.IsPrint(r) && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func printCombineResult(w io.Writer, result CombineResult) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	green.Fprintf(w, "Recovered secret from %d %s shares\n", result.Shares, result.Scheme)
	fmt.Fprintln(w)

	cyan.Fprint(w, "Hex:  ")
	fmt.Fprintln(w, result.SecretHex)
	if result.Secret != "" {
		cyan.Fprint(w, "Text: ")
		fmt.Fprintln(w, result.Secret)
	}
}
