package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// IssueRefreshToken returns the configured number of CSPRNG bytes, base64 encoded.
func (i *Issuer) IssueRefreshToken() (string, error) {
	return NewRefreshToken(i.refreshSize)
}

func NewRefreshToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("refresh token size must be positive, got %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
