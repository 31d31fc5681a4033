package secretsharing

import (
	"fmt"
	"io"
	"sort"

	"github.com/Davincible/sharing/pkg/crypto/xorshare"
	"github.com/Davincible/sharing/pkg/secure"
	"github.com/google/uuid"
)

// XORSharer implements SecretSharer for the (n, n) scheme. Threshold is
// always equal to Parts.
type XORSharer struct {
	random io.Reader
}

func NewXORSharer(random io.Reader) *XORSharer {
	return &XORSharer{random: secure.NewLockedReader(random)}
}

func (s *XORSharer) Scheme() SchemeType {
	return SchemeXOR
}

func (s *XORSharer) scheme(parts int, operator string) (*xorshare.Scheme, error) {
	op, err := xorshare.ParseOperator(operator)
	if err != nil {
		return nil, err
	}
	return xorshare.New(parts, xorshare.WithOperator(op), xorshare.WithRandom(s.random))
}

func (s *XORSharer) ValidateConfig(config Config) error {
	if config.Threshold != 0 && config.Threshold != config.Parts {
		return fmt.Errorf("%w: xor sharing needs all %d shares, threshold %d is not supported",
			xorshare.ErrInvalidConfig, config.Parts, config.Threshold)
	}
	_, err := s.scheme(config.Parts, config.Operator)
	return err
}

func (s *XORSharer) Split(secret []byte, config Config) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if err := s.ValidateConfig(config); err != nil {
		return nil, err
	}

	scheme, err := s.scheme(config.Parts, config.Operator)
	if err != nil {
		return nil, err
	}

	buffers, err := scheme.Split(secret)
	if err != nil {
		return nil, fmt.Errorf("xor split failed: %w", err)
	}

	setID := uuid.NewString()
	shares := make([]Share, len(buffers))
	for i, data := range buffers {
		shares[i] = Share{
			Scheme:     SchemeXOR,
			SetID:      setID,
			Index:      i + 1,
			Threshold:  config.Parts,
			Total:      config.Parts,
			SecretSize: len(secret),
			Operator:   scheme.Operator().String(),
			Data:       data,
		}
	}

	return shares, nil
}

// Combine accepts the shares in any order; they are put back in index order
// before recombination since the additive operator depends on it.
func (s *XORSharer) Combine(shares []Share) ([]byte, error) {
	if err := CheckShareSet(shares); err != nil {
		return nil, err
	}

	first := shares[0]
	scheme, err := s.scheme(first.Total, first.Operator)
	if err != nil {
		return nil, err
	}
	if len(shares) != first.Total {
		return nil, fmt.Errorf("%w: need exactly %d, got %d", xorshare.ErrShareCount, first.Total, len(shares))
	}

	ordered := make([]Share, len(shares))
	copy(ordered, shares)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	buffers := make([][]byte, len(ordered))
	for i, share := range ordered {
		if share.Index != i+1 {
			return nil, fmt.Errorf("%w: expected share indices 1..%d, found %d", xorshare.ErrShareCount, first.Total, share.Index)
		}
		buffers[i] = share.Data
	}

	secret, err := scheme.Combine(buffers)
	if err != nil {
		return nil, fmt.Errorf("xor combine failed: %w", err)
	}
	return secret, nil
}
