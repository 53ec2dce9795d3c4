package user

import "time"

// User is the persistence shape of an account row.
type User struct {
	ID                   int64     `gorm:"primaryKey"`
	Username             string    `gorm:"column:username;size:80;uniqueIndex;not null"`
	Email                string    `gorm:"column:email;size:120;uniqueIndex;not null"`
	PasswordHash         string    `gorm:"column:password_hash;size:128"`
	FirstName            string    `gorm:"column:first_name;size:50;not null"`
	LastName             string    `gorm:"column:last_name;size:50;not null"`
	Department           string    `gorm:"column:department;size:50"`
	RoleLevel            string    `gorm:"column:role_level;size:30"`
	Role                 string    `gorm:"column:role;size:20;default:user"`
	IsActive             bool      `gorm:"column:is_active;default:true"`
	NotificationsEnabled bool      `gorm:"column:notifications_enabled;default:true"`
	CreatedAt            time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}
