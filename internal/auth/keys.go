package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"user-management-server/internal/config"
)

// Keys loads the RSA signing keypair from the configured PEM files.
// Files are read at call time; key material is immutable for the process
// lifetime, so concurrent reads need no synchronization.
type Keys struct {
	cfg *config.Config
}

// NewKeys creates a Keys provider from the application configuration.
func NewKeys(cfg *config.Config) *Keys {
	return &Keys{cfg: cfg}
}

// PrivateKey reads and parses the RSA private key used for signing.
func (k *Keys) PrivateKey() (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(k.cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading private key: %v", ErrKeyUnavailable, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing private key: %v", ErrKeyUnavailable, err)
	}
	return key, nil
}

// PublicKey reads and parses the RSA public key used for verification.
func (k *Keys) PublicKey() (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(k.cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading public key: %v", ErrKeyUnavailable, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing public key: %v", ErrKeyUnavailable, err)
	}
	return key, nil
}

// PublicKeyPEM returns the raw PEM bytes of the verification key, for
// handing out to clients that verify tokens themselves.
func (k *Keys) PublicKeyPEM() ([]byte, error) {
	// Parse first so we never serve a file that is not a valid public key.
	if _, err := k.PublicKey(); err != nil {
		return nil, err
	}
	return os.ReadFile(k.cfg.PublicKeyPath)
}
