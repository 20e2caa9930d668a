// Package cryptox holds the server's symmetric and hashing primitives:
// the subject cipher that hides database ids inside signed tokens, bcrypt
// password hashing and one-time code generation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	ivSize  = 16
	tagSize = 16
	keySize = 32

	// scrypt parameters; the salt is fixed so every process derives the same
	// key from the same secret.
	scryptN    = 16384
	scryptR    = 8
	scryptP    = 1
	scryptSalt = "salt"
)

// ErrAuthenticationFailure is returned by Decrypt when a token is malformed
// or its GCM tag does not verify.
var ErrAuthenticationFailure = errors.New("authentication failure")

// DeriveKey stretches secret into a 256-bit AES key with scrypt.
func DeriveKey(secret []byte) ([]byte, error) {
	return scrypt.Key(secret, []byte(scryptSalt), scryptN, scryptR, scryptP, keySize)
}

// SubjectCipher encrypts short strings (user ids, emails) with AES-256-GCM
// using a 16-byte IV. Tokens are base64(IV ‖ tag ‖ ciphertext).
type SubjectCipher struct {
	aead cipher.AEAD
}

// NewSubjectCipher derives the key from secret and prepares the AEAD.
func NewSubjectCipher(secret string) (*SubjectCipher, error) {
	if secret == "" {
		return nil, errors.New("subject cipher: empty secret")
	}
	key, err := DeriveKey([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return newSubjectCipherWithKey(key)
}

func newSubjectCipherWithKey(key []byte) (*SubjectCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}
	return &SubjectCipher{aead: aead}, nil
}

// Encrypt seals plainText under a fresh random IV.
func (c *SubjectCipher) Encrypt(plainText string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	// Seal appends the tag after the ciphertext; the wire format wants it
	// right after the IV.
	sealed := c.aead.Seal(nil, iv, []byte(plainText), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, ivSize+tagSize+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any malformed or tampered token yields
// ErrAuthenticationFailure.
func (c *SubjectCipher) Decrypt(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(raw) < ivSize+tagSize {
		return "", ErrAuthenticationFailure
	}

	iv := raw[:ivSize]
	tag := raw[ivSize : ivSize+tagSize]
	ct := raw[ivSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrAuthenticationFailure
	}
	return string(plain), nil
}
