package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	customErrors "github.com/videoanalytics/api-gateway/internal/auth/errors"
)

// Claims is the verified content of an access token.
type Claims struct {
	Subject string
	Roles   []string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Codec signs and verifies access tokens with a shared HMAC secret.
// Verification is purely local: signature plus expiry, no store lookup,
// which is what keeps it viable on the per-request hot path.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, customErrors.NewInvalidArgument("empty signing secret")
	}
	if ttl <= 0 {
		return nil, customErrors.NewInvalidArgument("non-positive access token ttl")
	}
	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

// Issue produces a compact signed token carrying subject and roles,
// issued at now and expiring at now plus the configured TTL.
func (c *Codec) Issue(subject string, roles []string, now time.Time) (string, error) {
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Roles: roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign access token")
	}
	return signed, nil
}

// Verify checks structure, signature and expiry against now. Every failure
// mode collapses into ErrInvalidToken: callers never need to distinguish a
// malformed token from an expired one.
func (c *Codec) Verify(raw string, now time.Time) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, customErrors.ErrInvalidToken
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}
	return Claims{Subject: claims.Subject, Roles: claims.Roles}, nil
}

// TTL exposes the configured lifetime for response metadata (expires_in).
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
