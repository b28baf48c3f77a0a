package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims are the fields this service reads from an access token.
type Claims struct {
	Subject string
	Role    string
	Expires time.Time
}

// NewAccessToken signs an HS256 token for profileID valid for ttl.  The
// auth service issues the real tokens; this is used by cmd/devtoken and
// tests.
func NewAccessToken(secret, profileID, role string, ttl time.Duration) (AccessToken, error) {
	if profileID == "" {
		return AccessToken{}, errors.New("auth: empty subject")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  profileID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and returns its claims.  Only
// HMAC-signed tokens with a non-empty string subject are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("auth: %w", err)
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, errors.New("auth: invalid claims")
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, errors.New("auth: missing subject")
	}
	out := Claims{Subject: sub}
	if role, ok := mc["role"].(string); ok {
		out.Role = role
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.Expires = exp.Time
	}
	return out, nil
}
