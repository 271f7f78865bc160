package secrets

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const passwordAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultPasswordLength is the length used for generated backend passwords
// and account meta keys.
const DefaultPasswordLength = 20

// RandomPassword returns a random string of the given length drawn from
// [0-9A-Za-z]. A non-positive length falls back to DefaultPasswordLength.
// The underlying entropy source failing is unrecoverable and panics.
func RandomPassword(length int) string {
	if length <= 0 {
		length = DefaultPasswordLength
	}

	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("secrets: entropy source unavailable: " + err.Error())
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out)
}

// RandomName returns a globally unique opaque token.
func RandomName() string {
	return uuid.NewString()
}
