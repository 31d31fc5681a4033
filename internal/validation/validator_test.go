package validation

import (
	"strings"
	"testing"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHex(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"Valid", "deadBEEF", false},
		{"Surrounding space", "  0102  ", false},
		{"Empty", "", true},
		{"Odd length", "abc", true},
		{"Bad characters", "zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHex(tt.input)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeHex(t *testing.T) {
	b, err := DecodeHex("0x010203")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	_, err = DecodeHex("0x")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	v, err := ParseDecimal(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	big := strings.Repeat("9", 700)
	v, err = ParseDecimal(big)
	require.NoError(t, err)
	assert.Equal(t, big, v.String())

	for _, bad := range []string{"", "-1", "1.5", "0x10", "12a"} {
		_, err := ParseDecimal(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestValidateSplitParams(t *testing.T) {
	tests := []struct {
		name      string
		scheme    secretsharing.SchemeType
		parts     int
		threshold int
		wantError bool
	}{
		{"Threshold valid", secretsharing.SchemeThreshold, 5, 3, false},
		{"Threshold many parts", secretsharing.SchemeThreshold, 1000, 3, false},
		{"Threshold too small", secretsharing.SchemeThreshold, 5, 1, true},
		{"Threshold above parts", secretsharing.SchemeThreshold, 3, 4, true},
		{"Threshold single part", secretsharing.SchemeThreshold, 1, 1, true},
		{"GF256 valid", secretsharing.SchemeGF256, 255, 2, false},
		{"GF256 too many parts", secretsharing.SchemeGF256, 256, 2, true},
		{"XOR implied threshold", secretsharing.SchemeXOR, 3, 0, false},
		{"XOR explicit threshold", secretsharing.SchemeXOR, 3, 3, false},
		{"XOR partial threshold", secretsharing.SchemeXOR, 3, 2, true},
		{"XOR single part", secretsharing.SchemeXOR, 1, 0, true},
		{"Unknown scheme", "slip039", 3, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplitParams(tt.scheme, tt.parts, tt.threshold)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassphrase(t *testing.T) {
	assert.NoError(t, ValidatePassphrase("fine passphrase"))
	assert.Error(t, ValidatePassphrase(strings.Repeat("a", 257)))
	assert.Error(t, ValidatePassphrase("null\x00byte"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "line one\nline two", SanitizeInput("  line one  \r\n  line two\r"))
}
