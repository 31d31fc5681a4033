package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Davincible/sharing/internal/validation"
	"github.com/Davincible/sharing/pkg/crypto/mnemonic"
	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
	"github.com/Davincible/sharing/pkg/secure"
	"github.com/Davincible/sharing/pkg/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type ShareOutput struct {
	Index    int    `json:"index"`
	Hex      string `json:"hex,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty"`
	File     string `json:"file,omitempty"`
}

type SplitResult struct {
	Scheme    string        `json:"scheme"`
	SetID     string        `json:"set_id"`
	Threshold int           `json:"threshold"`
	Total     int           `json:"total"`
	Operator  string        `json:"operator,omitempty"`
	Shares    []ShareOutput `json:"shares"`
}

func NewSplitCommand() *cobra.Command {
	var (
		scheme        string
		parts         int
		threshold     int
		operator      string
		useStdin      bool
		hexInput      bool
		decimalInput  bool
		outputDir     string
		usePassphrase bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into shares",
		Long: `Split a secret into shares using one of the supported schemes:

  threshold  Shamir sharing over the 2049-bit prime field 2^2048+981.
             Any t of n shares recover the secret (up to 256 bytes).
  xor        All n shares are required. Shares are combined with XOR
             or with addition modulo 256 (--operator add).
  gf256      Shamir sharing byte-wise over GF(2^8) for secrets of any length.

Without --output-dir the shares are printed. With --output-dir each share is
written to its own file, optionally encrypted with a passphrase.`,
		Example: `  # 3-of-5 threshold shares printed to the terminal
  sharing split -n 5 -t 3

  # XOR shares of a hex secret read from stdin
  echo deadbeef | sharing split --scheme xor -n 3 --stdin --hex

  # Encrypted share files, one per participant
  sharing split -n 5 -t 3 --output-dir ./shares --passphrase`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			defaults := cfg.SplitConfig()
			if !cmd.Flags().Changed("scheme") {
				scheme = string(defaults.Scheme)
			}
			if !cmd.Flags().Changed("parts") {
				parts = defaults.Parts
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = defaults.Threshold
				if secretsharing.SchemeType(scheme) == secretsharing.SchemeXOR {
					threshold = 0
				}
			}
			if !cmd.Flags().Changed("operator") {
				operator = defaults.Operator
			}
			if !cmd.Flags().Changed("output-dir") {
				outputDir = cfg.Storage.DefaultPath
			}

			splitConfig := secretsharing.Config{
				Scheme:    secretsharing.SchemeType(scheme),
				Threshold: threshold,
				Parts:     parts,
				Operator:  operator,
			}
			if err := validation.ValidateSplitParams(splitConfig.Scheme, parts, threshold); err != nil {
				return err
			}
			if hexInput && decimalInput {
				return fmt.Errorf("--hex and --decimal are mutually exclusive")
			}
			if usePassphrase && outputDir == "" {
				return fmt.Errorf("--passphrase requires --output-dir")
			}

			var passphrase []byte
			if usePassphrase || (outputDir != "" && cfg.Security.RequirePassphrase) {
				passphrase, err = readPassphrase(cmd, true)
				if err != nil {
					return err
				}
				defer secure.Zero(passphrase)
			}
			if outputDir != "" {
				if err := cfg.ValidatePassphrase(passphrase); err != nil {
					return err
				}
			}

			raw, err := readSecret(cmd, useStdin)
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			if cfg.Security.WipeMemory {
				defer secure.Zero(raw)
			}

			secret, err := decodeSecret(raw, hexInput, decimalInput)
			if err != nil {
				return err
			}
			if cfg.Security.WipeMemory {
				defer secure.Zero(secret)
			}

			shares, err := secretsharing.NewDefaultRegistry(nil).Split(secret, splitConfig)
			if err != nil {
				return fmt.Errorf("failed to split secret: %w", err)
			}
			slog.Debug("Split secret",
				"scheme", scheme,
				"parts", parts,
				"threshold", shares[0].Threshold,
				"set_id", shares[0].SetID)

			result := newSplitResult(shares)

			if outputDir != "" {
				perm, err := cfg.FileMode()
				if err != nil {
					return err
				}
				paths, err := storage.WriteShareSet(outputDir, shares, passphrase, perm)
				if err != nil {
					return err
				}
				for i := range result.Shares {
					result.Shares[i] = ShareOutput{Index: result.Shares[i].Index, File: paths[i]}
				}
				slog.Debug("Wrote share files", "dir", outputDir, "count", len(paths), "encrypted", len(passphrase) > 0)
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return writeJSON(out, result)
			}
			printSplitResult(out, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scheme, "scheme", "s", "threshold", "Sharing scheme: threshold, xor or gf256")
	cmd.Flags().IntVarP(&parts, "parts", "n", 3, "Total number of shares to create")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "Minimum shares needed to reconstruct")
	cmd.Flags().StringVar(&operator, "operator", "xor", "Combining operator for the xor scheme: xor or add")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read the secret from stdin")
	cmd.Flags().BoolVar(&hexInput, "hex", false, "Secret is hex encoded")
	cmd.Flags().BoolVar(&decimalInput, "decimal", false, "Secret is a decimal integer")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write one share file per participant to this directory")
	cmd.Flags().BoolVarP(&usePassphrase, "passphrase", "p", false, "Encrypt share files with a passphrase")

	return cmd
}

// decodeSecret interprets the raw input according to the input flags.
func decodeSecret(raw []byte, hexInput, decimalInput bool) ([]byte, error) {
	switch {
	case hexInput:
		// Hex may be pasted across several lines.
		return validation.DecodeHex(strings.ReplaceAll(validation.SanitizeInput(string(raw)), "\n", ""))
	case decimalInput:
		v, err := validation.ParseDecimal(validation.SanitizeInput(string(raw)))
		if err != nil {
			return nil, err
		}
		size := (v.BitLen() + 7) / 8
		if size == 0 {
			size = 1
		}
		return v.FillBytes(make([]byte, size)), nil
	}

	if len(raw) == 0 {
		return nil, secretsharing.ErrEmptySecret
	}
	secret := make([]byte, len(raw))
	copy(secret, raw)
	return secret, nil
}

func newSplitResult(shares []secretsharing.Share) SplitResult {
	first := shares[0]
	result := SplitResult{
		Scheme:    string(first.Scheme),
		SetID:     first.SetID,
		Threshold: first.Threshold,
		Total:     first.Total,
		Operator:  first.Operator,
		Shares:    make([]ShareOutput, len(shares)),
	}

	for i, share := range shares {
		result.Shares[i] = ShareOutput{
			Index: share.Index,
			Hex:   hex.EncodeToString(share.Data),
		}
		if words, ok := encodeWords(share.Data); ok {
			result.Shares[i].Mnemonic = words
		}
	}

	return result
}

// encodeWords returns the word form of data, checked by decoding it again.
func encodeWords(data []byte) (string, bool) {
	if !mnemonic.CanEncode(len(data)) {
		return "", false
	}
	words, err := mnemonic.Encode(data)
	if err != nil {
		return "", false
	}
	decoded, err := mnemonic.Decode(words)
	if err != nil || !secure.ConstantTimeCompare(decoded, data) {
		return "", false
	}
	return words, true
}

func printSplitResult(w io.Writer, result SplitResult) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	yellow.Fprintf(w, "=== %s SHARES ===\n", result.Scheme)
	fmt.Fprintln(w)

	green.Fprintf(w, "Created %d shares with threshold %d\n", result.Total, result.Threshold)
	fmt.Fprintf(w, "Any %d shares can reconstruct the original secret\n", result.Threshold)
	if result.Operator != "" {
		fmt.Fprintf(w, "Operator: %s\n", result.Operator)
	}
	fmt.Fprintf(w, "Set ID: %s\n\n", result.SetID)

	for _, share := range result.Shares {
		fmt.Fprintf(w, "Share %d of %d:\n", share.Index, result.Total)
		if share.File != "" {
			cyan.Fprint(w, "  File:  ")
			fmt.Fprintln(w, share.File)
			continue
		}

		cyan.Fprint(w, "  Hex:   ")
		fmt.Fprintln(w, share.Hex)
		if share.Mnemonic != "" {
			green.Fprintln(w, "  Words:")
			wrapWords(w, "    ", share.Mnemonic)
		}
		fmt.Fprintln(w)
	}

	red.Fprintln(w, "SECURITY WARNING:")
	fmt.Fprintln(w, "- Store each share in a different secure location")
	fmt.Fprintln(w, "- Never store shares together or unencrypted")
	fmt.Fprintln(w, "- Test recovery before relying on these shares")
}
