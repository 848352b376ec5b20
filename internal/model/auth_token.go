package model

import "time"

// AuthToken is the single live bearer token of a user. TokenDigest holds the
// issued token verbatim.
type AuthToken struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	TokenDigest string    `json:"-" gorm:"size:512;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
