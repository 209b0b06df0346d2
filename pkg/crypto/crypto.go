package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Mail account passwords are stored encrypted at rest. The key is derived from the
// configured encryption key with PBKDF2; the salt and nonce travel with the ciphertext.

const (
	saltSize   = 16
	keySize    = 32
	pbkdf2Iter = 4096
)

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Encrypt seals plaintext with AES-GCM under a key derived from secret.
func Encrypt(plaintext, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("encryption key not configured")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func Decrypt(ciphertext, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("encryption key not configured")
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < saltSize {
		return "", ErrInvalidCiphertext
	}

	salt := raw[:saltSize]
	gcm, err := newGCM(secret, salt)
	if err != nil {
		return "", err
	}

	if len(raw) < saltSize+gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce := raw[saltSize : saltSize+gcm.NonceSize()]
	sealed := raw[saltSize+gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

func newGCM(secret string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(secret), salt, pbkdf2Iter, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
