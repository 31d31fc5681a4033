package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Davincible/sharing/internal/validation"
	"github.com/Davincible/sharing/pkg/config"
	"github.com/Davincible/sharing/pkg/secure"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PassphraseEnv supplies the share file passphrase without a prompt.
const PassphraseEnv = "SHARING_PASSPHRASE"

// loadConfig resolves the --config flag, falling back to the default path.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded configuration", "path", path)

	return cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// isTerminal reports whether in is an interactive terminal.
func isTerminal(in io.Reader) (int, bool) {
	f, ok := in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// readLine reads a single line without echo when in is a terminal.
func readLine(cmd *cobra.Command, prompt string) ([]byte, error) {
	in := cmd.InOrStdin()
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if fd, ok := isTerminal(in); ok {
		line, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return line, nil
	}

	return readUnbuffered(in)
}

// readUnbuffered reads up to a newline one byte at a time so consecutive
// prompts can share a piped reader.
func readUnbuffered(in io.Reader) ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err == io.EOF {
			if len(line) == 0 {
				return nil, io.ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return bytes.TrimRight(line, "\r"), nil
}

// readPassphrase returns the passphrase from the environment or a prompt.
// Interactive terminals are asked to confirm when confirm is set.
func readPassphrase(cmd *cobra.Command, confirm bool) ([]byte, error) {
	if env := os.Getenv(PassphraseEnv); env != "" {
		return []byte(env), nil
	}

	pass, err := readLine(cmd, "Enter passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	if _, ok := isTerminal(cmd.InOrStdin()); ok && confirm {
		again, err := readLine(cmd, "Confirm passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		match := secure.ConstantTimeCompare(again, pass)
		secure.Zero(again)
		if !match {
			return nil, fmt.Errorf("passphrases do not match")
		}
	}

	if err := validation.ValidatePassphrase(string(pass)); err != nil {
		return nil, err
	}

	return pass, nil
}

// readSecret reads the secret from stdin or an interactive prompt.
func readSecret(cmd *cobra.Command, useStdin bool) ([]byte, error) {
	if useStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return []byte(strings.TrimRight(string(data), "\r\n")), nil
	}

	return readLine(cmd, "Enter your secret: ")
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// wrapWords prints words in groups of four per line.
func wrapWords(w io.Writer, indent, words string) {
	fields := strings.Fields(words)
	for k := 0; k < len(fields); k += 4 {
		end := k + 4
		if end > len(fields) {
			end = len(fields)
		}
		fmt.Fprintf(w, "%s%s\n", indent, strings.Join(fields[k:end], " "))
	}
}
