package utils

import (
	"crypto/rand"
	"math/big"
)

const suffixCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateRandomSuffix returns an n-character random lowercase alphanumeric
// string, safe for object keys and blob names.
func GenerateRandomSuffix(n int) (string, error) {
	result := make([]byte, n)
	for i := range result {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixCharset))))
		if err != nil {
			return "", err
		}
		result[i] = suffixCharset[idx.Int64()]
	}
	return string(result), nil
}
