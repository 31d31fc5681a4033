package secretsharing

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Davincible/sharing/pkg/crypto/field"
	"github.com/Davincible/sharing/pkg/crypto/threshold"
	"github.com/Davincible/sharing/pkg/secure"
	"github.com/google/uuid"
)

// ThresholdSharer adapts the prime field scheme to byte secrets. The secret
// is read as a big-endian integer, so it may hold at most ByteLen()-1 bytes
// of arbitrary content; share values are stored fixed-width.
type ThresholdSharer struct {
	field  *field.Field
	random io.Reader
}

func NewThresholdSharer(random io.Reader) *ThresholdSharer {
	return &ThresholdSharer{
		field:  field.Default(),
		random: secure.NewLockedReader(random),
	}
}

func (s *ThresholdSharer) Scheme() SchemeType {
	return SchemeThreshold
}

func (s *ThresholdSharer) scheme(t, n int) (*threshold.Scheme, error) {
	return threshold.New(t, n, threshold.WithField(s.field), threshold.WithRandom(s.random))
}

func (s *ThresholdSharer) ValidateConfig(config Config) error {
	_, err := s.scheme(config.Threshold, config.Parts)
	return err
}

// MaxSecretSize is the longest byte secret that always fits the field.
func (s *ThresholdSharer) MaxSecretSize() int {
	return (s.field.BitLen() - 1) / 8
}

func (s *ThresholdSharer) Split(secret []byte, config Config) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(secret) > s.MaxSecretSize() {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d-byte limit", threshold.ErrSecretOutOfRange, len(secret), s.MaxSecretSize())
	}

	scheme, err := s.scheme(config.Threshold, config.Parts)
	if err != nil {
		return nil, err
	}

	value := new(big.Int).SetBytes(secret)
	defer secure.ZeroInts(value)

	points, err := scheme.Share(value)
	if err != nil {
		return nil, fmt.Errorf("threshold split failed: %w", err)
	}

	setID := uuid.NewString()
	shares := make([]Share, len(points))
	for i, point := range points {
		shares[i] = Share{
			Scheme:     SchemeThreshold,
			SetID:      setID,
			Index:      point.X(),
			Threshold:  config.Threshold,
			Total:      config.Parts,
			SecretSize: len(secret),
			Data:       point.Y().FillBytes(make([]byte, s.field.ByteLen())),
		}
	}

	return shares, nil
}

func (s *ThresholdSharer) Combine(shares []Share) ([]byte, error) {
	if err := CheckShareSet(shares); err != nil {
		return nil, err
	}

	first := shares[0]
	scheme, err := s.scheme(first.Threshold, first.Total)
	if err != nil {
		return nil, err
	}

	points := make([]threshold.Share, len(shares))
	for i, share := range shares {
		if len(share.Data) != s.field.ByteLen() {
			return nil, fmt.Errorf("%w: share %d has %d bytes, expected %d",
				threshold.ErrInvalidShare, share.Index, len(share.Data), s.field.ByteLen())
		}
		points[i] = threshold.NewShare(share.Index, new(big.Int).SetBytes(share.Data))
	}

	value, err := scheme.Combine(points)
	if err != nil {
		return nil, fmt.Errorf("threshold combine failed: %w", err)
	}
	defer secure.ZeroInts(value)

	if (value.BitLen()+7)/8 > first.SecretSize {
		return nil, fmt.Errorf("recovered value does not fit in %d bytes; shares are corrupt or from different splits", first.SecretSize)
	}

	return value.FillBytes(make([]byte, first.SecretSize)), nil
}
