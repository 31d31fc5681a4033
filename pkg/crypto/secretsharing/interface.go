// Package secretsharing provides a unified interface over the threshold,
// XOR and GF(256) sharing schemes. Every scheme emits the same byte-oriented
// Share envelope, which is what the CLI and the storage layer handle.
package secretsharing

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// SchemeType represents the type of secret sharing scheme
type SchemeType string

const (
	// SchemeThreshold is Shamir's scheme over the 2049-bit prime field.
	SchemeThreshold SchemeType = "threshold"
	// SchemeXOR is the (n, n) byte-wise scheme.
	SchemeXOR SchemeType = "xor"
	// SchemeGF256 is Shamir's scheme over GF(2^8), one polynomial per byte.
	SchemeGF256 SchemeType = "gf256"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrNoShares          = errors.New("no shares provided")
	ErrMixedShares       = errors.New("shares belong to different splits")
	ErrEmptySecret       = errors.New("secret cannot be empty")
)

// Share represents a single share in any secret sharing scheme
type Share struct {
	Scheme     SchemeType `json:"scheme"`
	SetID      string     `json:"set_id"`
	Index      int        `json:"index"`
	Threshold  int        `json:"threshold"`
	Total      int        `json:"total"`
	SecretSize int        `json:"secret_size"`
	Operator   string     `json:"operator,omitempty"`
	Data       []byte     `json:"data"`
}

// Config contains configuration for a split
type Config struct {
	Scheme    SchemeType `json:"scheme"`
	Threshold int        `json:"threshold"`
	Parts     int        `json:"parts"`
	// Operator selects the byte operation of the XOR scheme: "xor" or "add".
	Operator string `json:"operator,omitempty"`
}

// SecretSharer defines the interface for secret sharing schemes
type SecretSharer interface {
	// Split splits a secret into shares according to the configuration
	Split(secret []byte, config Config) ([]Share, error)

	// Combine reconstructs the secret from shares of one split
	Combine(shares []Share) ([]byte, error)

	// ValidateConfig validates the sharing configuration
	ValidateConfig(config Config) error

	// Scheme returns the scheme type this sharer implements
	Scheme() SchemeType
}

// Registry maps scheme types to their implementations. It is not safe for
// concurrent Register calls; populate it before use.
type Registry struct {
	sharers map[SchemeType]SecretSharer
}

func NewRegistry() *Registry {
	return &Registry{
		sharers: make(map[SchemeType]SecretSharer),
	}
}

// NewDefaultRegistry returns a registry with every built-in scheme. random
// feeds the threshold and XOR schemes; nil selects crypto/rand.
func NewDefaultRegistry(random io.Reader) *Registry {
	r := NewRegistry()
	r.Register(NewThresholdSharer(random))
	r.Register(NewXORSharer(random))
	r.Register(NewGF256Sharer())
	return r
}

func (r *Registry) Register(sharer SecretSharer) {
	r.sharers[sharer.Scheme()] = sharer
}

func (r *Registry) Get(scheme SchemeType) (SecretSharer, error) {
	sharer, exists := r.sharers[scheme]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
	return sharer, nil
}

// Schemes returns the registered scheme types in sorted order.
func (r *Registry) Schemes() []SchemeType {
	schemes := make([]SchemeType, 0, len(r.sharers))
	for scheme := range r.sharers {
		schemes = append(schemes, scheme)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i] < schemes[j] })
	return schemes
}

// Split splits a secret using the scheme named in config.
func (r *Registry) Split(secret []byte, config Config) ([]Share, error) {
	sharer, err := r.Get(config.Scheme)
	if err != nil {
		return nil, err
	}
	return sharer.Split(secret, config)
}

// Combine checks that the shares come from one split and hands them to the
// matching scheme.
func (r *Registry) Combine(shares []Share) ([]byte, error) {
	if err := CheckShareSet(shares); err != nil {
		return nil, err
	}
	sharer, err := r.Get(shares[0].Scheme)
	if err != nil {
		return nil, err
	}
	return sharer.Combine(shares)
}

// CheckShareSet verifies that all shares carry the same scheme, set ID and
// parameters.
func CheckShareSet(shares []Share) error {
	if len(shares) == 0 {
		return ErrNoShares
	}

	first := shares[0]
	for _, share := range shares[1:] {
		switch {
		case share.Scheme != first.Scheme:
			return fmt.Errorf("%w: schemes %s and %s", ErrMixedShares, first.Scheme, share.Scheme)
		case share.SetID != first.SetID:
			return fmt.Errorf("%w: set IDs %s and %s", ErrMixedShares, first.SetID, share.SetID)
		case share.Threshold != first.Threshold || share.Total != first.Total:
			return fmt.Errorf("%w: share %d has parameters %d-of-%d, share %d has %d-of-%d",
				ErrMixedShares, first.Index, first.Threshold, first.Total, share.Index, share.Threshold, share.Total)
		case share.SecretSize != first.SecretSize || share.Operator != first.Operator:
			return fmt.Errorf("%w: share %d and share %d disagree on the secret layout", ErrMixedShares, first.Index, share.Index)
		}
	}
	return nil
}
