package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the claims carried by a session token
type TokenClaims struct {
	AccountID string    `json:"account_id"`
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		now:          time.Now,
	}, nil
}

// CreateToken generates a new PASETO v4.local token for the session
func (s *PasetoService) CreateToken(accountID uuid.UUID, sessionID string, duration time.Duration) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("account_id", accountID.String())
	token.SetString("session_id", sessionID)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts a PASETO v4.local token and returns its claims
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	// Expiry is checked below so that expired and invalid tokens can be told apart
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	accountID, err := token.GetString("account_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionID, err := token.GetString("session_id")
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		AccountID: accountID,
		SessionID: sessionID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
