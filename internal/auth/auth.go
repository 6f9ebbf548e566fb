// Package auth issues and checks the bearer tokens that tie an HTTP client
// to its casino session, and guards the operator endpoints.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/alexbotov/casino/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

// Claims carried by a session token
type Claims struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	jwt.RegisteredClaims
}

// Service provides token functionality
type Service struct {
	secret      []byte
	expiry      time.Duration
	operatorKey string
}

// New creates a new auth service
func New(cfg *config.AuthConfig) *Service {
	return &Service{
		secret:      []byte(cfg.JWTSecret),
		expiry:      cfg.TokenExpiry,
		operatorKey: cfg.OperatorKey,
	}
}

// IssueToken signs a token for a session
func (s *Service) IssueToken(sessionID, playerName string) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(s.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID:  sessionID,
		PlayerName: playerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken checks the signature and expiry and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// OperatorEnabled reports whether operator endpoints are reachable at all.
func (s *Service) OperatorEnabled() bool {
	return s.operatorKey != ""
}

// CheckOperatorKey compares key against the configured operator key.
func (s *Service) CheckOperatorKey(key string) bool {
	if s.operatorKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.operatorKey)) == 1
}
