package validation

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
)

var (
	hexPattern     = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+$`)
)

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

// DecodeHex validates and decodes a hex secret, accepting an optional 0x prefix.
func DecodeHex(input string) ([]byte, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "0x")
	if err := ValidateHex(input); err != nil {
		return nil, err
	}
	return hex.DecodeString(input)
}

// ParseDecimal parses a non-negative base-10 integer secret.
func ParseDecimal(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if !decimalPattern.MatchString(input) {
		return nil, fmt.Errorf("secret must be a non-negative decimal integer")
	}
	v, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal integer")
	}
	return v, nil
}

// ValidateSplitParams checks the share counts a scheme accepts before any
// secret is read. For the XOR scheme the threshold is implied by parts.
func ValidateSplitParams(scheme secretsharing.SchemeType, parts, threshold int) error {
	switch scheme {
	case secretsharing.SchemeThreshold:
		if parts < 2 {
			return fmt.Errorf("parts must be at least 2 (got %d)", parts)
		}
		if threshold < 2 || threshold > parts {
			return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
		}
	case secretsharing.SchemeGF256:
		if parts < 2 || parts > 255 {
			return fmt.Errorf("parts must be between 2 and 255 (got %d)", parts)
		}
		if threshold < 2 || threshold > parts {
			return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
		}
	case secretsharing.SchemeXOR:
		if parts < 2 {
			return fmt.Errorf("parts must be at least 2 (got %d)", parts)
		}
		if threshold != 0 && threshold != parts {
			return fmt.Errorf("xor scheme requires all %d shares; threshold %d is not supported", parts, threshold)
		}
	default:
		return fmt.Errorf("unknown scheme %q (supported: threshold, xor, gf256)", scheme)
	}

	return nil
}

func ValidatePassphrase(passphrase string) error {
	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase too long (max 256 characters)")
	}

	for i, ch := range passphrase {
		if ch == 0 {
			return fmt.Errorf("passphrase contains null character at position %d", i)
		}
	}

	return nil
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}
