package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// SessionTokenBytes is the entropy of a session token (256-bit).
const SessionTokenBytes = 32

// NewOpaqueToken returns a URL-safe random token of bytesLen bytes of entropy.
func NewOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", domain.ErrRandomFailed(errors.New("invalid token length"))
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	// URL-safe, no padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}
