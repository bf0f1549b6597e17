package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewResetToken generates a cryptographically random 64-character hex token
// (32 random bytes) for password reset links. Refresh tokens share the format.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewRefreshToken generates an opaque session refresh token.
func NewRefreshToken() (string, error) {
	return NewResetToken()
}

// NewConfirmationToken generates a UUID token for email confirmation.
func NewConfirmationToken() string {
	return uuid.NewString()
}

// NewOTP generates a random 6-digit one-time code in [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
