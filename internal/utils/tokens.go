package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RefreshTokenBytes — энтропия refresh-токена по умолчанию, 256 бит.
const RefreshTokenBytes = 32

// NewRefreshToken выдаёт криптослучайную hex-строку длиной 2*nBytes символов.
func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = RefreshTokenBytes
	}
	raw := make([]byte, nBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
