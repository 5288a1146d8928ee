package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrDecryption covers every way a ciphertext can fail to open: bad
// base64, wrong padding, or a ciphertext produced against another
// process's keypair. Callers must re-fetch the public key and re-encrypt.
var ErrDecryption = errors.New("could not decrypt message")

// KeyService holds the single RSA keypair generated at process start.
// The keypair never rotates while the server runs; restarting the server
// invalidates every ciphertext produced against the old public key.
type KeyService struct {
	key       *rsa.PrivateKey
	publicPEM string
}

func NewKeyService() (*KeyService, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return newKeyService(key)
}

// NewKeyServiceFromKey wraps an existing keypair, so tests can use a
// fixed one.
func NewKeyServiceFromKey(key *rsa.PrivateKey) (*KeyService, error) {
	return newKeyService(key)
}

func newKeyService(key *rsa.PrivateKey) (*KeyService, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &KeyService{key: key, publicPEM: string(pemBytes)}, nil
}

// PublicKeyPEM returns the public half in PEM form. Safe for concurrent
// use; the underlying key is immutable after construction.
func (s *KeyService) PublicKeyPEM() string {
	return s.publicPEM
}

// Decrypt opens a base64-encoded RSA-OAEP/SHA-256 ciphertext and returns
// the plaintext. The plaintext and ciphertext are never logged.
func (s *KeyService) Decrypt(ciphertext string) (string, error) {
	encrypted, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryption
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, s.key, encrypted, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
