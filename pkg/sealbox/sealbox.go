package sealbox

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// Sealed layout: salt (16) | nonce (24) | secretbox ciphertext.

var (
	ErrSealedTooShort = errors.New("sealed data too short")
	ErrOpenFailed     = errors.New("could not open sealed data")
)

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	// Argon2id parameters. Tuned low: this protects a local credential
	// file against casual copying, not against an online attacker.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

func deriveKey(passphrase string, salt []byte) *[keyLen]byte {
	var key [keyLen]byte
	raw := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLen)
	copy(key[:], raw)
	return &key
}

// Seal encrypts plaintext under a key derived from the passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	key := deriveKey(passphrase, salt)

	out := make([]byte, 0, saltLen+nonceLen+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

// Open decrypts data produced by Seal with the same passphrase.
func Open(sealed []byte, passphrase string) ([]byte, error) {
	if len(sealed) < saltLen+nonceLen+secretbox.Overhead {
		return nil, ErrSealedTooShort
	}

	salt := sealed[:saltLen]

	var nonce [nonceLen]byte
	copy(nonce[:], sealed[saltLen:saltLen+nonceLen])

	key := deriveKey(passphrase, salt)

	plaintext, ok := secretbox.Open(nil, sealed[saltLen+nonceLen:], &nonce, key)
	if !ok {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}
