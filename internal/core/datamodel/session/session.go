package session

import "time"

// Session is a server-side login session row. The token is the random
// value wrapped inside the signed cookie, never the cookie itself.
type Session struct {
	ID        int64     `gorm:"primaryKey"`
	Token     string    `gorm:"column:token;size:64;uniqueIndex;not null"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
