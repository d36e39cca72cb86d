package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"
)

const resetTokenBytes = 20

var codeRange = big.NewInt(900000)

// generateVerificationCode returns a uniformly random 6-digit code in [100000, 999999]
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// generateResetToken returns 20 random bytes hex-encoded
func generateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the SHA-256 hex digest stored in place of a plaintext token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
