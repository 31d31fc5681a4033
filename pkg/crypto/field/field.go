// Package field implements arithmetic in the prime field Z/pZ on math/big
// integers. A Field is immutable once constructed, so one value can be shared
// freely between schemes and goroutines.
package field

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// DefaultOffset is the offset c of the default modulus 2^2048 + c.
const DefaultOffset = 981

// primalityRounds is the number of Miller-Rabin rounds used by New.
const primalityRounds = 32

var (
	ErrNotPrime      = errors.New("modulus is not prime")
	ErrNotInvertible = errors.New("element has no inverse")
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Field is the prime field of integers modulo p. Every operation returns a
// newly allocated element in [0, p) and leaves its arguments untouched.
type Field struct {
	p       *big.Int
	pMinus2 *big.Int
	byteLen int
}

// New returns the field of integers modulo p. p must be an odd prime.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(two) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be an odd prime greater than 2", ErrNotPrime)
	}
	if !p.ProbablyPrime(primalityRounds) {
		return nil, fmt.Errorf("%w: %d-bit modulus failed primality test", ErrNotPrime, p.BitLen())
	}
	return newField(p), nil
}

// Default returns the field modulo 2^2048 + 981. The modulus is a verified
// prime, so no primality test is run here.
func Default() *Field {
	p := new(big.Int).Lsh(one, 2048)
	p.Add(p, big.NewInt(DefaultOffset))
	return newField(p)
}

func newField(p *big.Int) *Field {
	modulus := new(big.Int).Set(p)
	return &Field{
		p:       modulus,
		pMinus2: new(big.Int).Sub(modulus, two),
		byteLen: (modulus.BitLen() + 7) / 8,
	}
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

func (f *Field) BitLen() int {
	return f.p.BitLen()
}

// ByteLen is the number of bytes needed to hold any element big-endian.
func (f *Field) ByteLen() int {
	return f.byteLen
}

// Contains reports whether a is a canonical element, 0 <= a < p.
func (f *Field) Contains(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.p) < 0
}

// Normalize maps any integer, negative ones included, into [0, p).
func (f *Field) Normalize(a *big.Int) *big.Int {
	// big.Int.Mod implements Euclidean modulus, so the result is never negative.
	return new(big.Int).Mod(a, f.p)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.p)
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, f.p)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.p)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, f.p)
}

// Exp computes a^e mod p for e >= 0.
func (f *Field) Exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(f.Normalize(a), e, f.p)
}

// Inv returns a^-1 using Fermat's little theorem, a^(p-2) mod p.
func (f *Field) Inv(a *big.Int) (*big.Int, error) {
	r := f.Normalize(a)
	if r.Sign() == 0 {
		return nil, ErrNotInvertible
	}
	return new(big.Int).Exp(r, f.pMinus2, f.p), nil
}

// Random draws a uniformly distributed element of [0, p) from r.
func (f *Field) Random(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, f.p)
	if err != nil {
		return nil, fmt.Errorf("failed to sample field element: %w", err)
	}
	return v, nil
}

// Equal reports whether both fields share the same modulus.
func (f *Field) Equal(other *Field) bool {
	return other != nil && f.p.Cmp(other.p) == 0
}
