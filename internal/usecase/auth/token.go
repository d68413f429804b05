package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/golang-jwt/jwt/v4"
)

// Issuer is the iss claim on every token this service signs.
const Issuer = "image-processor"

// Tokens signs and verifies HS256 bearer tokens whose subject is a user id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
	}
}

func (t *Tokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the user id carried by a valid token.
func (t *Tokens) Verify(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := t.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.UUID{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(Issuer, true) {
		return uuid.UUID{}, fmt.Errorf("%w: bad issuer", ErrInvalidToken)
	}
	if claims.ExpiresAt == nil {
		return uuid.UUID{}, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.UUID{}, errors.Join(ErrInvalidToken, err)
	}
	return id, nil
}
