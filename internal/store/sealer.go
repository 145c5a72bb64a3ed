package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

var ErrSealedValueCorrupt = errors.New("sealed value is truncated or corrupt")

// Sealer encrypts state values at rest with a passphrase-derived key.
// The bearer token is the only secret the console holds; leaving it in
// plaintext on disk widens the blast radius of a stolen laptop to the
// whole banking API.
type Sealer struct {
	passphrase []byte
}

// NewSealer creates a sealer for the given passphrase.
func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: []byte(passphrase)}
}

// Seal encrypts plaintext. Output layout: salt || nonce || box.
// A fresh salt and nonce are drawn per call, so sealing is not deterministic.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

// Unseal decrypts a value produced by Seal.
func (s *Sealer) Unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrSealedValueCorrupt
	}

	key, err := s.deriveKey(sealed[:saltSize])
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrSealedValueCorrupt
	}
	return plaintext, nil
}

func (s *Sealer) deriveKey(salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}
