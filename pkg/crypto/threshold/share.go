package threshold

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Share is one point (x, f(x)) of the sharing polynomial. Its fields are
// unexported so a share cannot change after it has been handed out.
type Share struct {
	x int
	y *big.Int
}

// NewShare builds a share from its index and value. y is copied.
func NewShare(x int, y *big.Int) Share {
	s := Share{x: x}
	if y != nil {
		s.y = new(big.Int).Set(y)
	}
	return s
}

// X returns the evaluation point (the share index).
func (s Share) X() int {
	return s.x
}

// Y returns a copy of the polynomial value at X.
func (s Share) Y() *big.Int {
	if s.y == nil {
		return nil
	}
	return new(big.Int).Set(s.y)
}

// String prints the index and a short prefix of the value only.
func (s Share) String() string {
	if s.y == nil {
		return fmt.Sprintf("Share(%d, <nil>)", s.x)
	}
	hex := s.y.Text(16)
	if len(hex) > 16 {
		hex = hex[:16] + "..."
	}
	return fmt.Sprintf("Share(%d, 0x%s)", s.x, hex)
}

type shareJSON struct {
	X int    `json:"x"`
	Y string `json:"y"`
}

func (s Share) MarshalJSON() ([]byte, error) {
	if s.y == nil {
		return nil, fmt.Errorf("share %d has no value", s.x)
	}
	return json.Marshal(shareJSON{X: s.x, Y: s.y.Text(16)})
}

func (s *Share) UnmarshalJSON(data []byte) error {
	var raw shareJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode share: %w", err)
	}
	y, ok := new(big.Int).SetString(raw.Y, 16)
	if !ok {
		return fmt.Errorf("share %d: invalid hex value", raw.X)
	}
	s.x = raw.X
	s.y = y
	return nil
}
