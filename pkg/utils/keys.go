package utils

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purposes for keys derived from the session secret.
const (
	KeyPurposeSessionHash  = "carwash-web session hash"
	KeyPurposeSessionBlock = "carwash-web session block"
	KeyPurposeCSRF         = "carwash-web csrf"
)

// DeriveKey expands secret into an independent key of n bytes for purpose.
func DeriveKey(secret, purpose string, n int) ([]byte, error) {
	key := make([]byte, n)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
