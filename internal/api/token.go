package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the client can read from an access token without the
// backend's key. It is for display only and is never used to decide access.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// DescribeToken decodes the registered claims of a JWT access token without
// verifying its signature. ok is false for opaque (non-JWT) tokens.
func DescribeToken(token string) (Identity, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, false
	}
	id := Identity{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, true
}
