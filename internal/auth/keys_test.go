package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-management-server/internal/config"
)

func TestKeys_LoadValidPair(t *testing.T) {
	keys := NewKeys(newTestConfig(t))

	priv, err := keys.PrivateKey()
	require.NoError(t, err)
	require.NotNil(t, priv)

	pub, err := keys.PublicKey()
	require.NoError(t, err)
	require.NotNil(t, pub)

	assert.True(t, priv.PublicKey.Equal(pub))
}

func TestKeys_MissingFiles(t *testing.T) {
	keys := NewKeys(&config.Config{
		PrivateKeyPath: "does/not/exist.pem",
		PublicKeyPath:  "does/not/exist.pub",
	})

	_, err := keys.PrivateKey()
	assert.ErrorIs(t, err, ErrKeyUnavailable)

	_, err = keys.PublicKey()
	assert.ErrorIs(t, err, ErrKeyUnavailable)

	_, err = keys.PublicKeyPEM()
	assert.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestKeys_GarbagePEM(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(badPath, []byte("not pem at all"), 0o600))

	keys := NewKeys(&config.Config{PrivateKeyPath: badPath, PublicKeyPath: badPath})

	_, err := keys.PrivateKey()
	assert.ErrorIs(t, err, ErrKeyUnavailable)

	_, err = keys.PublicKey()
	assert.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestKeys_PublicKeyPEM(t *testing.T) {
	keys := NewKeys(newTestConfig(t))

	pemBytes, err := keys.PublicKeyPEM()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(pemBytes), "PUBLIC KEY"))
}
