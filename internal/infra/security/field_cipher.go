package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"ubot-platform/internal/config"
	"ubot-platform/internal/domain/ports/adapter"
)

var _ adapter.Cipher = (*FieldCipher)(nil)

// FieldCipher encrypts single PII fields (session phone numbers) with
// AES-GCM and a random nonce per value. Output: base64(nonce || ciphertext).
type FieldCipher struct {
	gcm cipher.AEAD
}

// NewFieldCipher expects a 16, 24 or 32 byte key (AES-128/192/256).
func NewFieldCipher(key string) (*FieldCipher, error) {
	k := []byte(key)
	if n := len(k); n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes; got %d", n)
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &FieldCipher{gcm: gcm}, nil
}

// FromConfig returns nil when no key is configured; phone numbers are then
// not persisted at all.
func FromConfig(cfg config.SecurityConfig) (adapter.Cipher, error) {
	if cfg.EncryptionKey == "" {
		return nil, nil
	}
	return NewFieldCipher(cfg.EncryptionKey)
}

func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

func (c *FieldCipher) Decrypt(b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	ns := c.gcm.NonceSize()
	if len(data) < ns {
		return "", fmt.Errorf("ciphertext too short")
	}
	pt, err := c.gcm.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("gcm open: %w", err)
	}
	return string(pt), nil
}
