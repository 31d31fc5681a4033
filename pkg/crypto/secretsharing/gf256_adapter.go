package secretsharing

import (
	"fmt"

	"github.com/Davincible/sharing/pkg/crypto/gf256"
	"github.com/google/uuid"
)

// GF256Sharer implements SecretSharer on top of the vault GF(2^8) scheme.
type GF256Sharer struct{}

func NewGF256Sharer() *GF256Sharer {
	return &GF256Sharer{}
}

func (s *GF256Sharer) Scheme() SchemeType {
	return SchemeGF256
}

func (s *GF256Sharer) ValidateConfig(config Config) error {
	_, err := gf256.New(config.Threshold, config.Parts)
	return err
}

func (s *GF256Sharer) Split(secret []byte, config Config) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	scheme, err := gf256.New(config.Threshold, config.Parts)
	if err != nil {
		return nil, err
	}

	parts, err := scheme.Split(secret)
	if err != nil {
		return nil, fmt.Errorf("gf256 split failed: %w", err)
	}

	setID := uuid.NewString()
	shares := make([]Share, len(parts))
	for i, part := range parts {
		shares[i] = Share{
			Scheme:     SchemeGF256,
			SetID:      setID,
			Index:      part.Index,
			Threshold:  config.Threshold,
			Total:      config.Parts,
			SecretSize: len(secret),
			Data:       part.Data,
		}
	}

	return shares, nil
}

func (s *GF256Sharer) Combine(shares []Share) ([]byte, error) {
	if err := CheckShareSet(shares); err != nil {
		return nil, err
	}

	first := shares[0]
	scheme, err := gf256.New(first.Threshold, first.Total)
	if err != nil {
		return nil, err
	}

	parts := make([]gf256.Share, len(shares))
	for i, share := range shares {
		parts[i] = gf256.Share{Index: share.Index, Data: share.Data}
	}

	secret, err := scheme.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("gf256 combine failed: %w", err)
	}
	if len(secret) != first.SecretSize {
		return nil, fmt.Errorf("recovered %d bytes, expected %d", len(secret), first.SecretSize)
	}
	return secret, nil
}
