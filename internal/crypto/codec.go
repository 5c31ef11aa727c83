package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrUndecodable is returned when a ciphertext cannot be decoded, either
// because it was produced with a different key or because it is corrupted.
var ErrUndecodable = errors.New("crypto: undecodable ciphertext")

// Codec is a reversible string transform used to obscure sensitive field
// values at rest. It is injected into the store layer; key management is
// external configuration.
type Codec interface {
	Encode(plaintext string) (string, error)
	Decode(ciphertext string) (string, error)
}

// AESCodec implements Codec with AES-256-GCM. The key is derived from a
// passphrase so deployments can rotate by re-encrypting with a new one.
type AESCodec struct {
	aead cipher.AEAD
}

func NewAESCodec(passphrase string) (*AESCodec, error) {
	if passphrase == "" {
		return nil, errors.New("crypto: empty passphrase")
	}

	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	return &AESCodec{aead: aead}, nil
}

func (c *AESCodec) Encode(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AESCodec) Decode(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrUndecodable
	}

	if len(raw) < c.aead.NonceSize() {
		return "", ErrUndecodable
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrUndecodable
	}

	return string(plaintext), nil
}
