package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"user-management-server/internal/models"
)

// SessionStore persists refresh-token records. Every method takes the
// database handle explicitly so callers decide the transactional boundary.
type SessionStore struct{}

// Record inserts a new active refresh-token row for the user.
func (SessionStore) Record(db *gorm.DB, userID uint, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	rec := models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindActive looks up a refresh-token row by exact token string and active
// flag. Returns (nil, nil) when no active row matches.
func (SessionStore) FindActive(db *gorm.DB, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := db.Where("token = ? AND is_active = ?", token, true).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Consume deactivates the record with a guarded update: the WHERE clause
// re-checks the active flag, so of two concurrent refreshes rotating the
// same token exactly one flips the row and the other gets
// ErrInvalidSession. Deactivation is one-directional; rows are never
// reactivated or deleted.
func (SessionStore) Consume(db *gorm.DB, rec *models.RefreshToken) error {
	now := time.Now()
	res := db.Model(&models.RefreshToken{}).
		Where("id = ? AND is_active = ?", rec.ID, true).
		Updates(map[string]interface{}{"is_active": false, "revoked_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidSession
	}
	rec.IsActive = false
	rec.RevokedAt = &now
	return nil
}

// DeactivateAllActive bulk-deactivates every active refresh-token row for
// the user. Fails with ErrNoActiveSession when there is nothing to revoke.
func (SessionStore) DeactivateAllActive(db *gorm.DB, userID uint) error {
	res := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{"is_active": false, "revoked_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoActiveSession
	}
	return nil
}
