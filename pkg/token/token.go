package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the backend's JWT payload the client cares about.
//
// The client never verifies the signature (it has no key material for that);
// it only peeks at claims to avoid network calls that are certain to fail
// and to show which organization a stored token was scoped to.
type Claims struct {
	jwt.RegisteredClaims

	UserID           string `json:"userId"`
	Role             string `json:"role"`
	CollectionPrefix string `json:"collectionPrefix"`
}

var ErrMalformed = errors.New("malformed bearer token")

// Peek parses a bearer token without verifying its signature.
func Peek(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMalformed
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ExpiredAt reports whether the token's exp claim is in the past at the given
// instant. Tokens without an exp claim, or tokens that fail to parse, are not
// reported as expired; the backend stays the authority in the doubtful cases.
func ExpiredAt(tokenString string, now time.Time) bool {
	claims, err := Peek(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
