package utils

import (
	"crypto/rand"
	"math/big"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandString returns a random lowercase alphanumeric string of length n,
// used for slug disambiguators and public tokens.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			b[i] = slugAlphabet[0]
			continue
		}
		b[i] = slugAlphabet[idx.Int64()]
	}
	return string(b)
}
