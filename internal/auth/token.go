package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-management-server/internal/config"
)

// TokenCodec encodes and decodes signed, time-bound identity assertions.
// The subject claim carries the username; expiration is an absolute epoch
// claim. Signing uses the RSA keypair from the Keys provider.
type TokenCodec struct {
	keys   *Keys
	method jwt.SigningMethod
}

// NewTokenCodec creates a codec for the configured signing algorithm.
// Only the RSA signature family is accepted.
func NewTokenCodec(cfg *config.Config, keys *Keys) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.JWTAlgorithm)
	}
	if _, ok := method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not in the RSA family", cfg.JWTAlgorithm)
	}
	return &TokenCodec{keys: keys, method: method}, nil
}

// Encode produces a signed token binding the subject to an absolute
// expiration instant.
func (c *TokenCodec) Encode(subject string, expiresAt time.Time) (string, error) {
	key, err := c.keys.PrivateKey()
	if err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(c.method, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Decode verifies the signature and expiration of a token and returns its
// claims. Every verification failure (malformed structure, bad signature,
// expiry in the past) yields the same ErrInvalidToken so callers cannot be
// used as an oracle for why a token was rejected.
func (c *TokenCodec) Decode(tokenString string) (*jwt.RegisteredClaims, error) {
	key, err := c.keys.PublicKey()
	if err != nil {
		return nil, err
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
