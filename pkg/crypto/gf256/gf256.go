// Package gf256 splits byte strings of any length with a threshold, running
// an independent polynomial over GF(2^8) per byte. Each share carries one
// extra trailing byte holding its evaluation point.
package gf256

import (
	"errors"
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

// MaxParts is the largest number of shares GF(2^8) has distinct points for.
const MaxParts = 255

var (
	ErrInvalidConfig      = errors.New("invalid gf256 configuration")
	ErrInsufficientShares = errors.New("not enough shares")
	ErrInvalidShare       = errors.New("invalid share")
)

type Share struct {
	Index int
	Data  []byte
}

type Scheme struct {
	parts     int
	threshold int
}

func New(threshold, parts int) (*Scheme, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("%w: threshold must be at least 2, got %d", ErrInvalidConfig, threshold)
	}
	if threshold > parts {
		return nil, fmt.Errorf("%w: threshold (%d) cannot be greater than parts (%d)", ErrInvalidConfig, threshold, parts)
	}
	if parts > MaxParts {
		return nil, fmt.Errorf("%w: parts cannot exceed %d, got %d", ErrInvalidConfig, MaxParts, parts)
	}
	return &Scheme{parts: parts, threshold: threshold}, nil
}

func (s *Scheme) Threshold() int {
	return s.threshold
}

func (s *Scheme) Parts() int {
	return s.parts
}

func (s *Scheme) Split(secret []byte) ([]Share, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret cannot be empty")
	}

	raw, err := shamir.Split(secret, s.parts, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	shares := make([]Share, len(raw))
	for i, data := range raw {
		shares[i] = Share{
			Index: i + 1,
			Data:  data,
		}
	}

	return shares, nil
}

// Combine recovers the secret from at least Threshold() shares. With more
// shares than needed, only the first Threshold() are used.
func (s *Scheme) Combine(shares []Share) ([]byte, error) {
	if len(shares) < s.threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, s.threshold, len(shares))
	}

	expectedLen := len(shares[0].Data)
	raw := make([][]byte, s.threshold)
	for i, share := range shares[:s.threshold] {
		if err := VerifyShare(share, expectedLen); err != nil {
			return nil, err
		}
		raw[i] = share.Data
	}

	secret, err := shamir.Combine(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}

	return secret, nil
}

// VerifyShare checks the framing of a share: its length (secret length plus
// the trailing point byte) and a nonzero index.
func VerifyShare(share Share, expectedLen int) error {
	if len(share.Data) < 2 {
		return fmt.Errorf("%w: share %d is too short", ErrInvalidShare, share.Index)
	}
	if len(share.Data) != expectedLen {
		return fmt.Errorf("%w: share %d length: expected %d, got %d", ErrInvalidShare, share.Index, expectedLen, len(share.Data))
	}
	if share.Index == 0 {
		return fmt.Errorf("%w: share index cannot be 0", ErrInvalidShare)
	}
	return nil
}
