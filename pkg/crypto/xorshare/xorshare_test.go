package xorshare

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		parts     int
		opts      []Option
		wantError bool
	}{
		{"Two parts", 2, nil, false},
		{"Many parts", 50, nil, false},
		{"Additive", 3, []Option{WithOperator(OperatorAdditive)}, false},
		{"Single part", 1, nil, true},
		{"Zero parts", 0, nil, true},
		{"Unknown operator", 3, []Option{WithOperator(Operator(7))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.parts, tt.opts...)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.parts, s.Parts())
		})
	}
}

func TestSplitAndCombine(t *testing.T) {
	lengths := []int{0, 1, 3, 16, 32, 255, 1024}
	partCounts := []int{2, 3, 5, 10}

	for _, op := range []Operator{OperatorXOR, OperatorAdditive} {
		for _, parts := range partCounts {
			s, err := New(parts, WithOperator(op))
			require.NoError(t, err)

			for _, length := range lengths {
				secret := make([]byte, length)
				_, err := rand.Read(secret)
				require.NoError(t, err)

				shares, err := s.Split(secret)
				require.NoError(t, err)
				require.Len(t, shares, parts)
				for _, share := range shares {
					assert.Len(t, share, length)
				}

				recovered, err := s.Combine(shares)
				require.NoError(t, err)
				assert.Equal(t, secret, recovered, "%s n=%d len=%d", op, parts, length)
			}
		}
	}
}

func TestTwoPartXORScenario(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	secret := []byte{0x01, 0x02, 0x03}
	shares, err := s.Split(secret)
	require.NoError(t, err)

	r := shares[0]
	expected := []byte{secret[0] ^ r[0], secret[1] ^ r[1], secret[2] ^ r[2]}
	assert.Equal(t, expected, shares[1])

	recovered, err := s.Combine(shares)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, recovered)
}

func TestAdditiveMatchesModularSum(t *testing.T) {
	s, err := New(3, WithOperator(OperatorAdditive))
	require.NoError(t, err)

	secret := []byte{0xFF, 0x00, 0x80}
	shares, err := s.Split(secret)
	require.NoError(t, err)

	for j := range secret {
		assert.Equal(t, byte(secret[j]+shares[0][j]+shares[1][j]), shares[2][j])
	}
}

func TestSplitDoesNotAliasSecret(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	secret := []byte("do not touch")
	original := append([]byte(nil), secret...)

	shares, err := s.Split(secret)
	require.NoError(t, err)
	assert.Equal(t, original, secret)

	shares[1][0] ^= 0xFF
	assert.Equal(t, original, secret)
}

func TestSplitIsRandomized(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)

	secret := bytes.Repeat([]byte{0x42}, 32)
	first, err := s.Split(secret)
	require.NoError(t, err)
	second, err := s.Split(secret)
	require.NoError(t, err)

	for i := range first {
		assert.NotEqual(t, first[i], second[i])
	}
}

func TestCombineShareCount(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)

	shares, err := s.Split([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		shares [][]byte
	}{
		{"None", nil},
		{"Missing one", shares[:2]},
		{"Extra share", append(append([][]byte{}, shares...), shares[0])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recovered, err := s.Combine(tt.shares)
			assert.Nil(t, recovered)
			assert.ErrorIs(t, err, ErrShareCount)
		})
	}
}

func TestCombineLengthMismatch(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)

	shares, err := s.Split([]byte{1, 2, 3})
	require.NoError(t, err)

	shares[1] = shares[1][:2]
	recovered, err := s.Combine(shares)
	assert.Nil(t, recovered)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMismatchedOperatorsDoNotRoundTrip(t *testing.T) {
	xor, err := New(3)
	require.NoError(t, err)
	add, err := New(3, WithOperator(OperatorAdditive))
	require.NoError(t, err)

	secret := bytes.Repeat([]byte{0x5A}, 64)
	shares, err := xor.Split(secret)
	require.NoError(t, err)

	recovered, err := add.Combine(shares)
	require.NoError(t, err)
	assert.NotEqual(t, secret, recovered)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source exhausted")
}

func TestSplitRandomSourceFailure(t *testing.T) {
	s, err := New(2, WithRandom(failingReader{}))
	require.NoError(t, err)

	shares, err := s.Split([]byte("secret"))
	assert.Nil(t, shares)
	assert.ErrorIs(t, err, ErrRandomSource)
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		input     string
		expected  Operator
		wantError bool
	}{
		{"xor", OperatorXOR, false},
		{"", OperatorXOR, false},
		{"add", OperatorAdditive, false},
		{"additive", OperatorAdditive, false},
		{"sub", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			op, err := ParseOperator(tt.input)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, op)
		})
	}

	assert.Equal(t, "xor", OperatorXOR.String())
	assert.Equal(t, "add", OperatorAdditive.String())
	assert.Equal(t, "operator(9)", Operator(9).String())
}

func BenchmarkSplit(b *testing.B) {
	s, err := New(5)
	if err != nil {
		b.Fatal(err)
	}
	secret := bytes.Repeat([]byte{0x42}, 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Split(secret); err != nil {
			b.Fatal(err)
		}
	}
}
