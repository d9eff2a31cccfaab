package cache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns cached snapshots into bytes and back.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type MsgpackCodec struct{}

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// SealedCodec encrypts the inner codec's output with AES-GCM. The nonce is
// prepended to the ciphertext.
type SealedCodec struct {
	inner Codec
	gcm   cipher.AEAD
}

func NewSealedCodec(inner Codec, key []byte) (*SealedCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SealedCodec{inner: inner, gcm: gcm}, nil
}

func (c *SealedCodec) Marshal(v any) ([]byte, error) {
	plaintext, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *SealedCodec) Unmarshal(data []byte, v any) error {
	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to decrypt cached value: %w", err)
	}
	return c.inner.Unmarshal(plaintext, v)
}
