package service

import (
	cryptoRand "crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6-digit code drawn uniformly from [100000, 999999]
func GenerateOTP() (string, error) {
	n, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
