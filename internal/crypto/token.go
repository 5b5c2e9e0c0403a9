package crypto

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken derives the stable key under which a revoked bearer token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
