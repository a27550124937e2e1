package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ptavares/socialspaces/internal/store"
)

var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenRevoked = errors.New("session token revoked")
)

// RevokedToken marks a token id as unusable until its natural expiry.
type RevokedToken struct {
	TokenID   string `redis:"token_id" mapstructure:"token_id"`
	RevokedAt int64  `redis:"revoked_at" mapstructure:"revoked_at"`
}

// Service issues and verifies short-lived HS256 session tokens. Logout does
// not wait for expiry: the token id goes into the revocation store with a
// TTL matching the remaining token lifetime.
type Service struct {
	secret  []byte
	ttl     time.Duration
	revoked store.Store[RevokedToken]
}

func NewService(secret string, ttl time.Duration, revoked store.Store[RevokedToken]) *Service {
	return &Service{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
	}
}

// Issue creates a token for the given username and returns the signed
// string together with its expiry time.
func (s *Service) Issue(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *Service) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Verify checks signature, expiry and revocation and returns the subject.
func (s *Service) Verify(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if _, err := s.revoked.Get(ctx, claims.ID); err == nil {
		return "", ErrTokenRevoked
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return claims.Subject, nil
}

// Revoke invalidates a still-valid token. Revoking an already invalid token
// is not an error to the caller beyond the invalid-token report.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return s.revoked.Set(ctx, claims.ID, RevokedToken{
		TokenID:   claims.ID,
		RevokedAt: time.Now().Unix(),
	}, remaining)
}
