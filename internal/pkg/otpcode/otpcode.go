// Package otpcode generates and digests numeric one-time passcodes.
package otpcode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Generate returns a uniformly random decimal code of exactly length digits
// drawn from crypto/rand. The first digit is never zero, so the code keeps
// its length when a client parses it as a number.
func Generate(length int) (string, error) {
	if length < 1 || length > 18 {
		return "", fmt.Errorf("otp length %d out of range", length)
	}
	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(lo, big.NewInt(10)), lo)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return n.Add(n, lo).String(), nil
}

// Hash returns the hex-encoded SHA-256 digest of code.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
