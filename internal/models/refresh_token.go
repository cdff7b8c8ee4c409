package models

import (
	"time"
)

// RefreshToken represents a stored refresh token in the database.
// Superseded rows are kept inactive as an audit trail, never deleted.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Token     string     `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expiresAt"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"-"`

	// Define the relationship to User
	User User `gorm:"foreignKey:UserID" json:"-"`
}
