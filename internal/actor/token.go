package actor

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type VerifiedSession struct {
	ActorID   string
	ExpiresAt time.Time
}

// IssueSessionToken mints an HS256 session token for an admin actor.
func IssueSessionToken(actorID string, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing auth secret")
	}
	claims := jwt.RegisteredClaims{
		Subject:   actorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// VerifySessionToken verifies a session token (JWT, HS256) and returns the
// actor id it was issued for.
func VerifySessionToken(tokenString string, secret string, now time.Time) (*VerifiedSession, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing auth secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &jwt.RegisteredClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}
	if claims.NotBefore != nil && claims.NotBefore.Time.After(now) {
		return nil, fmt.Errorf("token not active yet")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject")
	}

	return &VerifiedSession{
		ActorID:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
