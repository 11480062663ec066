package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionTTL is how long a session token stays valid after creation.
const SessionTTL = 24 * time.Hour

// Session is an opaque login token. Expired rows are never purged.
type Session struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint      `json:"user_id" gorm:"index"`
	SessionToken string    `json:"session_token" gorm:"uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Session) TableName() string { return "sessions" }

// BeforeCreate stamps created_at and derives the expiry from it.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(SessionTTL)
	}
	return nil
}

type SessionRequest struct {
	UserID *uint `json:"userId"`
}

type SessionResponse struct {
	SessionID    uint   `json:"sessionId"`
	SessionToken string `json:"sessionToken"`
	ExpiresAt    string `json:"expiresAt"`
}
