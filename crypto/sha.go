package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Sha3Sum256 calculates Sha3-256 hash
func Sha3Sum256(data []byte) []byte {
	hash := sha3.Sum256(data)
	return hash[:]
}

// DeriveKey turns an arbitrary secret into a 32 byte AES key
func DeriveKey(secret string) []byte {
	return Sha3Sum256([]byte(secret))
}
