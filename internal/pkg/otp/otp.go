package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Codes are drawn uniformly from [100000, 999999]; the range excludes values
// below 100000 so the six-digit string form has no leading-zero ambiguity.
const (
	codeMin   = 100000
	codeSpan  = 900000
	CodeWidth = 6
)

// New returns a uniformly random six-digit one-time passcode.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
