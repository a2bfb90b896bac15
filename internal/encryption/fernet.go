// Package encryption provides Fernet-based symmetric encryption for stored
// contact data. Multiple keys may be configured to allow rotation: new data
// is sealed with the first key, old data opens with any of them.
package encryption

import (
	"fmt"
	"strings"

	"github.com/fernet/fernet-go"
)

// Encryptor encrypts and decrypts short strings with Fernet.
type Encryptor struct {
	keys []*fernet.Key
}

// NewEncryptor creates an Encryptor from a comma-separated list of URL-safe
// base64-encoded 32-byte keys. The first key seals new data; all keys are
// tried when opening.
func NewEncryptor(keyStr string) (*Encryptor, error) {
	var keys []*fernet.Key
	for _, part := range strings.Split(keyStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := fernet.DecodeKey(part)
		if err != nil {
			return nil, fmt.Errorf("decoding fernet key: %w", err)
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("encryption key is empty")
	}
	return &Encryptor{keys: keys}, nil
}

// GenerateKey creates a new random Fernet key.
func GenerateKey() (*fernet.Key, error) {
	k := new(fernet.Key)
	if err := k.Generate(); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return k, nil
}

// Encrypt seals plaintext with the primary key and returns a Fernet token.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), e.keys[0])
	if err != nil {
		return "", fmt.Errorf("encrypting: %w", err)
	}
	return string(tok), nil
}

// Decrypt opens a Fernet token with any configured key.
func (e *Encryptor) Decrypt(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, e.keys)
	if msg == nil {
		return "", fmt.Errorf("decryption failed: invalid token or key")
	}
	return string(msg), nil
}
