package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"user-management-server/internal/config"
	"user-management-server/internal/models"
)

// SessionManager orchestrates login, token issuance, refresh, logout and
// current-user resolution. Session lifecycle per user token: issued ->
// rotated (repeatable) -> revoked by logout. Access tokens stay
// cryptographically valid until expiration regardless of this lifecycle;
// only the user's active flag is cross-checked on resolution.
type SessionManager struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Codec *TokenCodec
	Store SessionStore
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(db *gorm.DB, cfg *config.Config, codec *TokenCodec) *SessionManager {
	return &SessionManager{DB: db, Cfg: cfg, Codec: codec}
}

// Login verifies credentials and issues an access+refresh token pair.
// An unknown username and a wrong password both return
// ErrInvalidCredentials.
func (m *SessionManager) Login(username, password string) (accessToken, refreshToken string, user *models.User, err error) {
	var u models.User
	if err := m.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, err
	}
	if !u.CheckPassword(password) {
		return "", "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", "", nil, ErrAccountDisabled
	}

	accessToken, refreshToken, err = m.IssueTokenPair(m.DB, &u)
	if err != nil {
		return "", "", nil, err
	}
	return accessToken, refreshToken, &u, nil
}

// Refresh rotates a refresh token: the presented token must match an
// active stored record and must itself decode as valid, the consumed
// record is retired, and a fresh pair is issued. Rotation runs in one
// transaction so a replayed or raced token always fails ErrInvalidSession.
func (m *SessionManager) Refresh(refreshToken string) (newAccess, newRefresh string, err error) {
	err = m.DB.Transaction(func(tx *gorm.DB) error {
		rec, err := m.Store.FindActive(tx, refreshToken)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrInvalidSession
		}

		// Store state and cryptographic state are checked independently: a
		// row can still be active while the token itself has expired.
		claims, err := m.Codec.Decode(refreshToken)
		if err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountDisabled
			}
			return err
		}
		if !user.IsActive {
			return ErrAccountDisabled
		}

		if err := m.Store.Consume(tx, rec); err != nil {
			return err
		}

		newAccess, newRefresh, err = m.IssueTokenPair(tx, &user)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

// ResolveCurrentUser decodes an access token and resolves it to an active
// user. This is the gate every protected operation depends on. A missing
// and an inactive user are indistinguishable to the caller.
func (m *SessionManager) ResolveCurrentUser(accessToken string) (*models.User, error) {
	claims, err := m.Codec.Decode(accessToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := m.DB.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountDisabled
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

// Logout deactivates every active refresh token for the user. Already
// issued access tokens keep decoding until natural expiration; logout only
// prevents future refreshes.
func (m *SessionManager) Logout(user *models.User) error {
	return m.Store.DeactivateAllActive(m.DB, user.ID)
}

// IssueTokenPair creates an access+refresh token pair for the user and
// persists the refresh half before returning.
func (m *SessionManager) IssueTokenPair(db *gorm.DB, user *models.User) (accessToken, refreshToken string, err error) {
	now := time.Now()
	accessExpiry := now.Add(time.Duration(m.Cfg.JWTExpirationMinutes) * time.Minute)
	refreshExpiry := now.Add(time.Duration(m.Cfg.JWTRefreshExpirationHours) * time.Hour)

	accessToken, err = m.Codec.Encode(user.Username, accessExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.Codec.Encode(user.Username, refreshExpiry)
	if err != nil {
		return "", "", err
	}

	if _, err := m.Store.Record(db, user.ID, refreshToken, refreshExpiry); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
