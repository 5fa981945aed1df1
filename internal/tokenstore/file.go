package tokenstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"

	"campusbuzz/internal/models"
)

// FileStore encrypts the token at rest with AES-GCM under a key derived from
// a passphrase via HKDF-SHA256. The nonce is prepended to the ciphertext.
type FileStore struct {
	path string
	key  []byte
}

// NewFileStore derives the sealing key and returns a store writing to path.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return nil, models.NewStorageUnavailableError(err)
	}
	return &FileStore{path: path, key: key}, nil
}

func deriveKey(passphrase string) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("campusbuzz-token-store"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	sealed, err := s.seal([]byte(token))
	if err != nil {
		return models.NewStorageUnavailableError(err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return models.NewStorageUnavailableError(err)
		}
	}
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return models.NewStorageUnavailableError(err)
	}
	return nil
}

func (s *FileStore) Read(_ context.Context) (string, error) {
	sealed, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", models.NewStorageUnavailableError(err)
	}
	token, err := s.open(sealed)
	if err != nil {
		return "", models.NewStorageUnavailableError(err)
	}
	return string(token), nil
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.NewStorageUnavailableError(err)
	}
	return nil
}

func (s *FileStore) seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("sealed token too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
