package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Davincible/sharing/pkg/crypto/secretsharing"
	"github.com/Davincible/sharing/pkg/secure"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize      = 32
	NonceSize     = 12
	KeySize       = 32
	Iterations    = 100000
	FormatVersion = 1

	DefaultPerm os.FileMode = 0600
)

var (
	ErrPassphraseRequired = errors.New("share file is encrypted; passphrase required")
	ErrDecrypt            = errors.New("failed to decrypt share file; wrong passphrase or corrupted data")
)

type EncryptedData struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// fileFormat is the on-disk layout. Exactly one of Share and Envelope is set.
type fileFormat struct {
	Version  int                  `json:"version"`
	Share    *secretsharing.Share `json:"share,omitempty"`
	Envelope *EncryptedData       `json:"envelope,omitempty"`
}

// ShareFile stores a single share, optionally sealed with a passphrase.
type ShareFile struct {
	path string
	perm os.FileMode
}

func NewShareFile(path string, perm os.FileMode) *ShareFile {
	if perm == 0 {
		perm = DefaultPerm
	}
	return &ShareFile{path: path, perm: perm}
}

func (f *ShareFile) Path() string {
	return f.path
}

// Save writes the share. An empty passphrase stores it as plain JSON.
func (f *ShareFile) Save(share secretsharing.Share, passphrase []byte) error {
	out := fileFormat{Version: FormatVersion}

	if len(passphrase) == 0 {
		out.Share = &share
	} else {
		plain, err := json.Marshal(share)
		if err != nil {
			return fmt.Errorf("failed to marshal share: %w", err)
		}
		defer secure.Zero(plain)

		envelope, err := encrypt(plain, passphrase)
		if err != nil {
			return err
		}
		out.Envelope = envelope
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal share file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(f.path, data, f.perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (f *ShareFile) read() (*fileFormat, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var in fileFormat
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse share file %s: %w", f.path, err)
	}
	if in.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported share file version %d", in.Version)
	}
	if (in.Share == nil) == (in.Envelope == nil) {
		return nil, fmt.Errorf("share file %s must hold either a share or an envelope", f.path)
	}
	return &in, nil
}

func (f *ShareFile) IsEncrypted() (bool, error) {
	in, err := f.read()
	if err != nil {
		return false, err
	}
	return in.Envelope != nil, nil
}

// Load reads the share back. The passphrase is ignored for plain files.
func (f *ShareFile) Load(passphrase []byte) (secretsharing.Share, error) {
	in, err := f.read()
	if err != nil {
		return secretsharing.Share{}, err
	}

	if in.Share != nil {
		return *in.Share, nil
	}

	if len(passphrase) == 0 {
		return secretsharing.Share{}, ErrPassphraseRequired
	}

	plain, err := decrypt(in.Envelope, passphrase)
	if err != nil {
		return secretsharing.Share{}, err
	}
	defer secure.Zero(plain)

	var share secretsharing.Share
	if err := json.Unmarshal(plain, &share); err != nil {
		return secretsharing.Share{}, fmt.Errorf("failed to unmarshal share: %w", err)
	}
	return share, nil
}

func (f *ShareFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Delete overwrites the file with random bytes before removing it.
func (f *ShareFile) Delete() error {
	if !f.Exists() {
		return nil
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("failed to stat file for secure deletion: %w", err)
	}

	noise, err := secure.SecureRandom(int(info.Size()))
	if err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}

	if err := os.WriteFile(f.path, noise, f.perm); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}

	return os.Remove(f.path)
}

func deriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func encrypt(plain, passphrase []byte) (*EncryptedData, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt)
	defer secure.Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &EncryptedData{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plain, nil),
	}, nil
}

func decrypt(envelope *EncryptedData, passphrase []byte) ([]byte, error) {
	if len(envelope.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: invalid nonce length %d", ErrDecrypt, len(envelope.Nonce))
	}

	key := deriveKey(passphrase, envelope.Salt)
	defer secure.Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
