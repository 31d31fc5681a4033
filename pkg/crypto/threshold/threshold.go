// Package threshold implements Shamir's (t, n) secret sharing over a large
// prime field. A secret is the constant term of a random polynomial of degree
// t-1; share i is the polynomial evaluated at x = i, and any t shares recover
// the constant term by Lagrange interpolation at zero.
package threshold

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/Davincible/sharing/pkg/crypto/field"
	"github.com/Davincible/sharing/pkg/secure"
)

var (
	ErrInvalidConfig      = errors.New("invalid threshold configuration")
	ErrSecretOutOfRange   = errors.New("secret is outside the field")
	ErrInsufficientShares = errors.New("not enough shares")
	ErrDuplicateShare     = errors.New("duplicate share index")
	ErrInvalidShare       = errors.New("invalid share")
	ErrZeroDenominator    = errors.New("zero denominator in interpolation")
	ErrRandomSource       = errors.New("random source failure")
)

// Scheme is an immutable (t, n) configuration over a fixed field.
type Scheme struct {
	threshold int
	parts     int
	field     *field.Field
	random    io.Reader
}

type Option func(*Scheme)

// WithField selects the prime field. The default is field.Default().
func WithField(f *field.Field) Option {
	return func(s *Scheme) {
		if f != nil {
			s.field = f
		}
	}
}

// WithRandom selects the entropy source used for coefficients. Reads are
// serialized, so the reader may be shared with other schemes.
func WithRandom(r io.Reader) Option {
	return func(s *Scheme) {
		if r != nil {
			s.random = secure.NewLockedReader(r)
		}
	}
}

// New returns a scheme where any threshold of the parts shares reconstruct
// the secret. It requires 2 <= threshold <= parts.
func New(threshold, parts int, opts ...Option) (*Scheme, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("%w: threshold must be at least 2, got %d", ErrInvalidConfig, threshold)
	}
	if parts < threshold {
		return nil, fmt.Errorf("%w: threshold (%d) cannot be greater than parts (%d)", ErrInvalidConfig, threshold, parts)
	}

	s := &Scheme{
		threshold: threshold,
		parts:     parts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.field == nil {
		s.field = field.Default()
	}
	if s.random == nil {
		s.random = secure.NewLockedReader(nil)
	}
	// Indices must stay distinct and nonzero modulo p.
	if !s.field.Contains(big.NewInt(int64(parts))) {
		return nil, fmt.Errorf("%w: %d parts do not fit a %d-bit field", ErrInvalidConfig, parts, s.field.BitLen())
	}
	return s, nil
}

func (s *Scheme) Threshold() int {
	return s.threshold
}

func (s *Scheme) Parts() int {
	return s.parts
}

func (s *Scheme) Field() *field.Field {
	return s.field
}

// Share splits secret into Parts() shares with indices 1..Parts().
// The secret must satisfy 0 <= secret < p.
func (s *Scheme) Share(secret *big.Int) ([]Share, error) {
	if !s.field.Contains(secret) {
		return nil, fmt.Errorf("%w: secret must be in [0, p) for a %d-bit modulus", ErrSecretOutOfRange, s.field.BitLen())
	}

	coefficients, err := s.randomPolynomial(secret)
	if err != nil {
		return nil, err
	}
	defer secure.ZeroInts(coefficients...)

	shares := make([]Share, s.parts)
	for i := 1; i <= s.parts; i++ {
		shares[i-1] = Share{
			x: i,
			y: s.evaluate(coefficients, big.NewInt(int64(i))),
		}
	}

	return shares, nil
}

// randomPolynomial returns a_0..a_{t-1} with a_0 = secret and the rest
// drawn uniformly from the whole field.
func (s *Scheme) randomPolynomial(secret *big.Int) ([]*big.Int, error) {
	coefficients := make([]*big.Int, s.threshold)
	coefficients[0] = new(big.Int).Set(secret)

	for i := 1; i < s.threshold; i++ {
		c, err := s.field.Random(s.random)
		if err != nil {
			secure.ZeroInts(coefficients...)
			return nil, fmt.Errorf("%w: coefficient %d: %v", ErrRandomSource, i, err)
		}
		coefficients[i] = c
	}

	return coefficients, nil
}

// evaluate computes a_0 + a_1*x + ... + a_{t-1}*x^{t-1} mod p by Horner's rule.
func (s *Scheme) evaluate(coefficients []*big.Int, x *big.Int) *big.Int {
	result := new(big.Int).Set(coefficients[len(coefficients)-1])
	for i := len(coefficients) - 2; i >= 0; i-- {
		result = s.field.Add(s.field.Mul(result, x), coefficients[i])
	}
	return result
}

// Combine reconstructs the secret from at least Threshold() shares. Every
// supplied share is validated, then exactly the first Threshold() entries are
// interpolated; callers choose which shares are used by ordering the input.
func (s *Scheme) Combine(shares []Share) (*big.Int, error) {
	if len(shares) < s.threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, s.threshold, len(shares))
	}

	for i, share := range shares {
		if share.x < 1 || share.x > s.parts {
			return nil, fmt.Errorf("%w: share %d has index %d outside [1, %d]", ErrInvalidShare, i, share.x, s.parts)
		}
	}
	if err := s.checkShares(shares); err != nil {
		return nil, err
	}

	return Interpolate(s.field, shares[:s.threshold])
}

func (s *Scheme) checkShares(shares []Share) error {
	seen := make(map[int]int, len(shares))
	for i, share := range shares {
		if !s.field.Contains(share.y) {
			return fmt.Errorf("%w: share %d value is not a field element", ErrInvalidShare, share.x)
		}
		if prev, dup := seen[share.x]; dup {
			return fmt.Errorf("%w: entries %d and %d both have index %d", ErrDuplicateShare, prev, i, share.x)
		}
		seen[share.x] = i
	}
	return nil
}

// Interpolate evaluates at x = 0 the unique polynomial of degree
// len(shares)-1 through the given points. It performs no threshold check:
// with fewer points than the sharing threshold the result is an unrelated
// field element.
func Interpolate(f *field.Field, shares []Share) (*big.Int, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no points to interpolate", ErrInsufficientShares)
	}

	xs := make([]*big.Int, len(shares))
	for i, share := range shares {
		if share.x < 1 {
			return nil, fmt.Errorf("%w: index %d must be positive", ErrInvalidShare, share.x)
		}
		if !f.Contains(share.y) {
			return nil, fmt.Errorf("%w: share %d value is not a field element", ErrInvalidShare, share.x)
		}
		xs[i] = big.NewInt(int64(share.x))
	}

	secret := new(big.Int)
	for i, share := range shares {
		numerator := big.NewInt(1)
		denominator := big.NewInt(1)

		for j := range shares {
			if i == j {
				continue
			}
			// (0 - x_j) / (x_i - x_j)
			numerator = f.Mul(numerator, f.Neg(xs[j]))
			denominator = f.Mul(denominator, f.Sub(xs[i], xs[j]))
		}

		inverse, err := f.Inv(denominator)
		if err != nil {
			if errors.Is(err, field.ErrNotInvertible) {
				return nil, fmt.Errorf("%w: index %d collides with another point modulo p: %w", ErrZeroDenominator, share.x, err)
			}
			return nil, err
		}

		term := f.Mul(share.y, f.Mul(numerator, inverse))
		secret = f.Add(secret, term)
	}

	return secret, nil
}
