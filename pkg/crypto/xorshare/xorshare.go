// Package xorshare implements (n, n) secret sharing on byte strings: n-1
// shares are uniformly random and the last one is derived so that combining
// all n shares yields the secret. Any n-1 shares are independent of it.
package xorshare

import (
	"errors"
	"fmt"
	"io"

	"github.com/Davincible/sharing/pkg/secure"
)

var (
	ErrInvalidConfig  = errors.New("invalid xor sharing configuration")
	ErrShareCount     = errors.New("wrong number of shares")
	ErrLengthMismatch = errors.New("share lengths differ")
	ErrRandomSource   = errors.New("random source failure")
)

// Operator is the byte-wise group operation used to combine shares.
type Operator int

const (
	// OperatorXOR combines bytes with exclusive or.
	OperatorXOR Operator = iota
	// OperatorAdditive combines bytes with addition modulo 256; the secret is
	// recovered as the last share minus all others.
	OperatorAdditive
)

func (o Operator) String() string {
	switch o {
	case OperatorXOR:
		return "xor"
	case OperatorAdditive:
		return "add"
	default:
		return fmt.Sprintf("operator(%d)", int(o))
	}
}

// ParseOperator accepts "xor" or "add".
func ParseOperator(name string) (Operator, error) {
	switch name {
	case "xor", "":
		return OperatorXOR, nil
	case "add", "additive":
		return OperatorAdditive, nil
	default:
		return 0, fmt.Errorf("%w: unknown operator %q", ErrInvalidConfig, name)
	}
}

type Scheme struct {
	parts    int
	operator Operator
	random   io.Reader
}

type Option func(*Scheme)

func WithOperator(op Operator) Option {
	return func(s *Scheme) {
		s.operator = op
	}
}

// WithRandom selects the entropy source for the random shares.
func WithRandom(r io.Reader) Option {
	return func(s *Scheme) {
		if r != nil {
			s.random = secure.NewLockedReader(r)
		}
	}
}

// New returns an (n, n) scheme. n must be at least 2.
func New(parts int, opts ...Option) (*Scheme, error) {
	if parts < 2 {
		return nil, fmt.Errorf("%w: parts must be at least 2, got %d", ErrInvalidConfig, parts)
	}

	s := &Scheme{parts: parts, operator: OperatorXOR}
	for _, opt := range opts {
		opt(s)
	}
	if s.operator != OperatorXOR && s.operator != OperatorAdditive {
		return nil, fmt.Errorf("%w: unsupported %s", ErrInvalidConfig, s.operator)
	}
	if s.random == nil {
		s.random = secure.NewLockedReader(nil)
	}
	return s, nil
}

func (s *Scheme) Parts() int {
	return s.parts
}

func (s *Scheme) Operator() Operator {
	return s.operator
}

// Split returns Parts() buffers, each len(secret) bytes long.
func (s *Scheme) Split(secret []byte) ([][]byte, error) {
	shares := make([][]byte, s.parts)
	last := make([]byte, len(secret))
	copy(last, secret)

	for i := 0; i < s.parts-1; i++ {
		r, err := secure.ReadRandom(s.random, len(secret))
		if err != nil {
			for _, share := range shares[:i] {
				secure.Zero(share)
			}
			secure.Zero(last)
			return nil, fmt.Errorf("%w: share %d: %v", ErrRandomSource, i+1, err)
		}
		shares[i] = r

		for j := range last {
			switch s.operator {
			case OperatorXOR:
				last[j] ^= r[j]
			case OperatorAdditive:
				last[j] += r[j]
			}
		}
	}
	shares[s.parts-1] = last

	return shares, nil
}

// Combine recovers the secret from exactly Parts() equally long shares.
// The last share must be the derived one for the additive operator.
func (s *Scheme) Combine(shares [][]byte) ([]byte, error) {
	if len(shares) != s.parts {
		return nil, fmt.Errorf("%w: need exactly %d, got %d", ErrShareCount, s.parts, len(shares))
	}

	size := len(shares[0])
	for i, share := range shares[1:] {
		if len(share) != size {
			return nil, fmt.Errorf("%w: share 1 has %d bytes, share %d has %d", ErrLengthMismatch, size, i+2, len(share))
		}
	}

	last := shares[s.parts-1]
	secret := make([]byte, size)
	copy(secret, last)

	for _, share := range shares[:s.parts-1] {
		for j := range secret {
			switch s.operator {
			case OperatorXOR:
				secret[j] ^= share[j]
			case OperatorAdditive:
				secret[j] -= share[j]
			}
		}
	}

	return secret, nil
}
