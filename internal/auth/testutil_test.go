package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-management-server/internal/config"
	"user-management-server/internal/models"
)

// writeTestKeys generates a throwaway RSA keypair and writes it as PEM
// files under the test's temp dir.
func writeTestKeys(t *testing.T) (privateKeyPath, publicKeyPath string) {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privKey),
	})

	pubASN1, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubASN1,
	})

	dir := t.TempDir()
	privateKeyPath = filepath.Join(dir, "private.pem")
	publicKeyPath = filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privateKeyPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(publicKeyPath, pubPEM, 0o644))

	return privateKeyPath, publicKeyPath
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	privPath, pubPath := writeTestKeys(t)
	return &config.Config{
		JWTAlgorithm:              "RS256",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
		PrivateKeyPath:            privPath,
		PublicKeyPath:             pubPath,
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()

	cfg := newTestConfig(t)
	keys := NewKeys(cfg)
	codec, err := NewTokenCodec(cfg, keys)
	require.NoError(t, err)
	return NewSessionManager(openTestDB(t), cfg, codec)
}

func createTestUser(t *testing.T, db *gorm.DB, username, email, password string, active bool) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    email,
		IsActive: active,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(&user).Error)
	if !active {
		// The column defaults to true; force the flag off explicitly.
		require.NoError(t, db.Model(&user).Update("is_active", false).Error)
	}
	return &user
}
