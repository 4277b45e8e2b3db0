// Package delivery resolves which delivery links of a catalog record can be served.
// It owns link encryption, provider classification, provider health tracking
// and the read-time filtering of links.
package delivery

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

// Supported cipher algorithms.
const (
	AlgorithmAES256CBC = "aes-256-cbc"

	DefaultSalt = "salt"
	DefaultIV   = "1234567890abcdef"
)

// scrypt cost parameters. They match the defaults of the key derivation that
// produced the ciphertexts already stored in the catalog.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

var (
	// ErrCipherConfiguration is returned when the cipher cannot be built from its configuration.
	ErrCipherConfiguration = errors.New("invalid cipher configuration")

	// ErrDecryption is returned when a stored link value cannot be decrypted.
	ErrDecryption = errors.New("link decryption failed")
)

// CipherConfig configures a LinkCipher.
type CipherConfig struct {
	Secret    string
	Salt      string
	IV        string
	Algorithm string
}

// LinkCipher encrypts and decrypts link URLs with a key derived once at construction.
// A fixed key and IV make encryption deterministic within the process.
type LinkCipher struct {
	block cipher.Block
	iv    []byte
}

// NewLinkCipher derives the key and prepares the block cipher.
func NewLinkCipher(cfg CipherConfig) (*LinkCipher, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: secret is required", ErrCipherConfiguration)
	}
	if cfg.Salt == "" {
		cfg.Salt = DefaultSalt
	}
	if cfg.IV == "" {
		cfg.IV = DefaultIV
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAES256CBC
	}

	if !strings.EqualFold(cfg.Algorithm, AlgorithmAES256CBC) {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrCipherConfiguration, cfg.Algorithm)
	}
	if len(cfg.IV) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrCipherConfiguration, aes.BlockSize, len(cfg.IV))
	}

	key, err := scrypt.Key([]byte(cfg.Secret), []byte(cfg.Salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: derive key: %v", ErrCipherConfiguration, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipherConfiguration, err)
	}

	return &LinkCipher{
		block: block,
		iv:    []byte(cfg.IV),
	}, nil
}

// Encrypt returns the base64 ciphertext of plain.
func (c *LinkCipher) Encrypt(plain string) (string, error) {
	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
func (c *LinkCipher) Decrypt(cipherText string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of the block size", ErrDecryption, len(raw))
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDecryption)
	}

	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
		}
	}
	return data[:len(data)-n], nil
}
