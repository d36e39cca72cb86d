package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims carries the account ID as subject and the session ID as token ID
type jwtClaims struct {
	jwt.RegisteredClaims
}

// JWTService handles HS256 JWT creation and validation
type JWTService struct {
	secret []byte
}

func NewJWTService(secret []byte) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(secret))
	}
	return &JWTService{secret: secret}, nil
}

// CreateToken generates a signed JWT for the session
func (s *JWTService) CreateToken(accountID uuid.UUID, sessionID string, duration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates the signature and expiry of a JWT and returns its claims
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	claims := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{
		AccountID: claims.Subject,
		SessionID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
