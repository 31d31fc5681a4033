package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
)

// FileName is the conventional name of a share file: the first eight
// characters of the set ID and the share index.
func FileName(share secretsharing.Share) string {
	id := share.SetID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		id = "noset"
	}
	return fmt.Sprintf("share-%s-%02d.json", id, share.Index)
}

// WriteShareSet writes one file per share into dir and returns the paths in
// share order. Files that were already written are removed if a later write
// fails.
func WriteShareSet(dir string, shares []secretsharing.Share, passphrase []byte, perm os.FileMode) ([]string, error) {
	if len(shares) == 0 {
		return nil, secretsharing.ErrNoShares
	}

	paths := make([]string, 0, len(shares))
	for _, share := range shares {
		file := NewShareFile(filepath.Join(dir, FileName(share)), perm)
		if err := file.Save(share, passphrase); err != nil {
			for _, written := range paths {
				_ = NewShareFile(written, perm).Delete()
			}
			return nil, fmt.Errorf("failed to write share %d: %w", share.Index, err)
		}
		paths = append(paths, file.Path())
	}

	return paths, nil
}

// ReadShares loads every path with the same passphrase.
func ReadShares(paths []string, passphrase []byte) ([]secretsharing.Share, error) {
	if len(paths) == 0 {
		return nil, secretsharing.ErrNoShares
	}

	shares := make([]secretsharing.Share, len(paths))
	for i, path := range paths {
		share, err := NewShareFile(path, 0).Load(passphrase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		shares[i] = share
	}

	return shares, nil
}
