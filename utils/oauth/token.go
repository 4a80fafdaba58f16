package oauth

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes gives 256 bits of entropy per opaque token.
const tokenBytes = 32

func GenerateRandomToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func GenerateRequestToken() (string, error) {
	return GenerateRandomToken(tokenBytes)
}

func GenerateAccessToken() (string, error) {
	return GenerateRandomToken(tokenBytes)
}
