package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	seiserrors "github.com/seisview/seisview/pkg/errors"
)

const issuer = "seisview"

// SignSharedKey mints an HS256 token for the given subject, valid for ttl.
// Both sides must hold the same key. The token carries standard registered
// claims so any JWT-aware server can validate it.
func SignSharedKey(key []byte, subject string, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", seiserrors.New(seiserrors.ErrCodeInvalidInput, "signing key is empty")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", seiserrors.Wrap(seiserrors.ErrCodeInternal, err, "sign token")
	}
	return signed, nil
}

// VerifySharedKey validates an HS256 token against the key and returns
// its subject. Expired tokens, tokens not yet valid, and tokens signed
// with a different key or algorithm are rejected.
func VerifySharedKey(key []byte, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", seiserrors.Wrap(seiserrors.ErrCodeSessionExpired, err, "token expired")
		}
		return "", seiserrors.Wrap(seiserrors.ErrCodeUnauthorized, err, "invalid token")
	}
	return claims.Subject, nil
}

// Subject extracts the sub claim without verifying the signature.
// The CLI uses this to label sessions; it must never be used to grant
// access.
func Subject(tokenString string) string {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return ""
	}
	return claims.Subject
}
