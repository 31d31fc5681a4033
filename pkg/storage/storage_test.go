package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShares(t *testing.T, config secretsharing.Config) []secretsharing.Share {
	t.Helper()
	shares, err := secretsharing.NewDefaultRegistry(nil).Split([]byte("stored secret"), config)
	require.NoError(t, err)
	return shares
}

func TestShareFilePlainRoundTrip(t *testing.T) {
	share := sampleShares(t, secretsharing.Config{Scheme: secretsharing.SchemeThreshold, Threshold: 2, Parts: 3})[0]
	file := NewShareFile(filepath.Join(t.TempDir(), "nested", "share.json"), 0)

	require.NoError(t, file.Save(share, nil))
	assert.True(t, file.Exists())

	encrypted, err := file.IsEncrypted()
	require.NoError(t, err)
	assert.False(t, encrypted)

	info, err := os.Stat(file.Path())
	require.NoError(t, err)
	assert.Equal(t, DefaultPerm, info.Mode().Perm())

	loaded, err := file.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, share, loaded)
}

func TestShareFileEncryptedRoundTrip(t *testing.T) {
	share := sampleShares(t, secretsharing.Config{Scheme: secretsharing.SchemeXOR, Parts: 2})[1]
	file := NewShareFile(filepath.Join(t.TempDir(), "share.json"), 0)
	passphrase := []byte("correct horse")

	require.NoError(t, file.Save(share, passphrase))

	raw, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), share.SetID)

	encrypted, err := file.IsEncrypted()
	require.NoError(t, err)
	assert.True(t, encrypted)

	loaded, err := file.Load(passphrase)
	require.NoError(t, err)
	assert.Equal(t, share, loaded)

	_, err = file.Load(nil)
	assert.ErrorIs(t, err, ErrPassphraseRequired)

	_, err = file.Load([]byte("wrong horse"))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestShareFileRejectsMalformedFiles(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"Not JSON", "not json"},
		{"Unknown version", `{"version": 9, "share": {"scheme": "xor"}}`},
		{"Empty body", `{"version": 1}`},
		{"Both bodies", `{"version": 1, "share": {"scheme": "xor"}, "envelope": {"salt": "", "nonce": "", "ciphertext": ""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewShareFile(path, 0).Load(nil)
			assert.Error(t, err)
		})
	}

	_, err := NewShareFile(filepath.Join(dir, "missing.json"), 0).Load(nil)
	assert.Error(t, err)
}

func TestShareFileDelete(t *testing.T) {
	share := sampleShares(t, secretsharing.Config{Scheme: secretsharing.SchemeGF256, Threshold: 2, Parts: 2})[0]
	file := NewShareFile(filepath.Join(t.TempDir(), "share.json"), 0)

	require.NoError(t, file.Save(share, nil))
	require.NoError(t, file.Delete())
	assert.False(t, file.Exists())

	assert.NoError(t, file.Delete())
}

func TestWriteAndReadShareSet(t *testing.T) {
	configs := []secretsharing.Config{
		{Scheme: secretsharing.SchemeThreshold, Threshold: 3, Parts: 5},
		{Scheme: secretsharing.SchemeXOR, Parts: 3, Operator: "add"},
		{Scheme: secretsharing.SchemeGF256, Threshold: 2, Parts: 4},
	}

	for _, config := range configs {
		t.Run(string(config.Scheme), func(t *testing.T) {
			dir := t.TempDir()
			shares := sampleShares(t, config)
			passphrase := []byte("set passphrase")

			paths, err := WriteShareSet(dir, shares, passphrase, 0)
			require.NoError(t, err)
			require.Len(t, paths, len(shares))

			for i, path := range paths {
				assert.Equal(t, filepath.Join(dir, FileName(shares[i])), path)
			}

			loaded, err := ReadShares(paths, passphrase)
			require.NoError(t, err)
			assert.Equal(t, shares, loaded)

			recovered, err := secretsharing.NewDefaultRegistry(nil).Combine(loaded)
			require.NoError(t, err)
			assert.Equal(t, []byte("stored secret"), recovered)
		})
	}
}

func TestShareSetErrors(t *testing.T) {
	_, err := WriteShareSet(t.TempDir(), nil, nil, 0)
	assert.ErrorIs(t, err, secretsharing.ErrNoShares)

	_, err = ReadShares(nil, nil)
	assert.ErrorIs(t, err, secretsharing.ErrNoShares)

	_, err = ReadShares([]string{filepath.Join(t.TempDir(), "nope.json")}, nil)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "share-0123abcd-07.json", FileName(secretsharing.Share{SetID: "0123abcd-ffff", Index: 7}))
	assert.Equal(t, "share-abc-12.json", FileName(secretsharing.Share{SetID: "abc", Index: 12}))
	assert.Equal(t, "share-noset-01.json", FileName(secretsharing.Share{Index: 1}))
}
