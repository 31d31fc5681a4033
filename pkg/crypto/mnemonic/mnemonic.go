// Package mnemonic renders short byte shares as BIP-39 word lists so they
// can be written down by hand. Only payloads of 16 to 32 bytes in steps of
// 4 have a word form.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	MinBytes = 16
	MaxBytes = 32
)

// CanEncode reports whether a payload of n bytes has a word form.
func CanEncode(n int) bool {
	return n >= MinBytes && n <= MaxBytes && n%4 == 0
}

// Encode turns data into a space separated word list.
func Encode(data []byte) (string, error) {
	if !CanEncode(len(data)) {
		return "", fmt.Errorf("payload must be %d-%d bytes in steps of 4, got %d", MinBytes, MaxBytes, len(data))
	}

	words, err := bip39.NewMnemonic(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode words: %w", err)
	}
	return words, nil
}

// Decode turns a word list produced by Encode back into bytes. The word
// checksum is verified.
func Decode(words string) ([]byte, error) {
	words = strings.Join(strings.Fields(strings.ToLower(words)), " ")
	if words == "" {
		return nil, fmt.Errorf("word list cannot be empty")
	}
	if !ValidateWordCount(len(strings.Fields(words))) {
		return nil, fmt.Errorf("word list must have 12, 15, 18, 21, or 24 words (got %d)", len(strings.Fields(words)))
	}

	data, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return nil, fmt.Errorf("invalid word list: %w", err)
	}
	return data, nil
}

func ValidateWordCount(count int) bool {
	switch count {
	case 12, 15, 18, 21, 24:
		return true
	default:
		return false
	}
}
