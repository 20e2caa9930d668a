package cryptox

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateOTP returns n uniformly random decimal digits.
func GenerateOTP(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}
