package service

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// File codes look like F-7K2Q9X.
	fileCodePrefix = "F-"
	fileCodeLength = 6

	// Share tokens look like sh_<24 url-safe chars>.
	shareTokenPrefix = "sh_"
	shareTokenBytes  = 18
)

// randomCode returns prefix plus length random uppercase-alphanumeric
// characters. Uniqueness is the caller's problem: generation alone is not a
// concurrency guarantee, the store's unique constraint is.
func randomCode(prefix string, length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("service: crypto/rand unavailable: " + err.Error())
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return prefix + string(out)
}

// randomShareToken returns a cryptographically random URL-safe sharing token.
func randomShareToken() string {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("service: crypto/rand unavailable: " + err.Error())
	}
	return shareTokenPrefix + base64.RawURLEncoding.EncodeToString(buf)
}
